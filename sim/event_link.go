package sim

import "fmt"

// TransmissionComplete is a request reaching the far end of a link. Loss is
// sampled from the link's loss_prob and its probabilistic faults; a delivered
// request arrives at the link target at the same tick.
type TransmissionComplete struct {
	Request uint64
	Link    string
}

func (*TransmissionComplete) Kind() EventKind { return KindTransmissionComplete }

func (e *TransmissionComplete) execute(ctx *Context, st *State, s *EventScheduler) error {
	link := ctx.Link(e.Link)
	if link == nil {
		return fmt.Errorf("transmission over unknown link %q", e.Link)
	}
	req, ok := st.Request(e.Request)
	if !ok {
		st.Totals.Late++
		return nil
	}
	ls := st.Links[link.ID]
	if ls.Down || ctx.oracles.Failure.Fails(link.Params, ParamLossProb, st.RNG(SubsystemNetwork)) || linkFaultDrops(ctx, st, link) {
		ls.Dropped++
		st.Totals.Dropped++
		return failRequest(ctx, st, s, req)
	}
	ls.Delivered++
	_, err := s.After(0, &Arrival{Request: req.ID, Component: link.Target})
	return err
}

// linkFaultDrops samples the link's probabilistic crash and disk faults.
func linkFaultDrops(ctx *Context, st *State, link *Link) bool {
	for _, f := range ctx.ProbabilisticFaults(link.ID) {
		if f.Type != FaultLatencySpike && ctx.oracles.Failure.Fails(f.params(), ParamProbability, st.RNG(SubsystemFailure)) {
			return true
		}
	}
	return false
}
