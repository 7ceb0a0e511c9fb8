// Package metrics summarizes a finished run: per-component load and outcome
// counters, per-link delivery, and the end-to-end latency distribution.
package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/arch-sim/arch-sim/sim"
)

// ComponentReport is the summary of one component.
type ComponentReport struct {
	ID              string  `json:"id"`
	Category        string  `json:"category"`
	Profile         string  `json:"profile"`
	Arrivals        int64   `json:"arrivals"`
	Served          int64   `json:"served"`
	Failed          int64   `json:"failed"`
	Rejected        int64   `json:"rejected"`
	PeakInFlight    int     `json:"peak_in_flight"`
	PeakQueue       int     `json:"peak_queue"`
	MeanConcurrency float64 `json:"mean_concurrency"`
	// Utilization is busy time over slot capacity; zero for unbounded components.
	Utilization   float64 `json:"utilization"`
	ThroughputRPS float64 `json:"throughput_rps"`
	CacheHitRatio float64 `json:"cache_hit_ratio,omitempty"`
}

// LinkReport is the summary of one link.
type LinkReport struct {
	ID        string  `json:"id"`
	Sent      int64   `json:"sent"`
	Delivered int64   `json:"delivered"`
	Dropped   int64   `json:"dropped"`
	LossRatio float64 `json:"loss_ratio"`
}

// LatencyReport summarizes end-to-end latencies of completed requests, in ms.
type LatencyReport struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean_ms"`
	Min   float64 `json:"min_ms"`
	P50   float64 `json:"p50_ms"`
	P90   float64 `json:"p90_ms"`
	P99   float64 `json:"p99_ms"`
	Max   float64 `json:"max_ms"`
}

// Report is the run summary.
type Report struct {
	ElapsedMs     float64           `json:"elapsed_ms"`
	Generated     int64             `json:"generated"`
	Completed     int64             `json:"completed"`
	Failed        int64             `json:"failed"`
	TimedOut      int64             `json:"timed_out"`
	Retries       int64             `json:"retries"`
	Dropped       int64             `json:"dropped"`
	Late          int64             `json:"late_events"`
	Open          int               `json:"open"`
	SuccessRatio  float64           `json:"success_ratio"`
	ThroughputRPS float64           `json:"throughput_rps"`
	Latency       LatencyReport     `json:"latency"`
	Components    []ComponentReport `json:"components"`
	Links         []LinkReport      `json:"links"`
}

// Collect builds a Report from the final State of a run that ended at now.
func Collect(ctx *sim.Context, st *sim.State, now sim.SimTime) *Report {
	elapsedSec := now.Millis() / 1000
	r := &Report{
		ElapsedMs:     now.Millis(),
		Generated:     st.Totals.Generated,
		Completed:     st.Totals.Completed,
		Failed:        st.Totals.Failed,
		TimedOut:      st.Totals.TimedOut,
		Retries:       st.Totals.Retries,
		Dropped:       st.Totals.Dropped,
		Late:          st.Totals.Late,
		Open:          st.OpenRequests(),
		SuccessRatio:  ratio(float64(st.Totals.Completed), float64(st.Totals.Generated)),
		ThroughputRPS: ratio(float64(st.Totals.Completed), elapsedSec),
		Latency:       summarizeLatencies(st.Latencies),
		Components:    make([]ComponentReport, 0, len(ctx.Components())),
		Links:         make([]LinkReport, 0, len(ctx.Links())),
	}

	for _, c := range ctx.Components() {
		cs := st.Components[c.ID]
		cr := ComponentReport{
			ID:              c.ID,
			Category:        string(c.Category),
			Profile:         c.Profile,
			Arrivals:        cs.Arrivals,
			Served:          cs.Served,
			Failed:          cs.Failed,
			Rejected:        cs.Rejected,
			PeakInFlight:    cs.PeakInFlight,
			PeakQueue:       cs.PeakQueue,
			MeanConcurrency: ratio(float64(cs.BusyTicks), float64(now)),
			ThroughputRPS:   ratio(float64(cs.Served), elapsedSec),
		}
		if slots := c.MaxConcurrency(); slots != math.MaxInt {
			cr.Utilization = ratio(float64(cs.BusyTicks), float64(slots)*float64(now))
		}
		if c.Category == sim.CategoryCache {
			cr.CacheHitRatio = ratio(float64(cs.CacheHits), float64(cs.CacheHits+cs.CacheMisses))
		}
		r.Components = append(r.Components, cr)
	}

	for _, l := range ctx.Links() {
		ls := st.Links[l.ID]
		r.Links = append(r.Links, LinkReport{
			ID:        l.ID,
			Sent:      ls.Sent,
			Delivered: ls.Delivered,
			Dropped:   ls.Dropped,
			LossRatio: ratio(float64(ls.Dropped), float64(ls.Sent)),
		})
	}
	return r
}

func summarizeLatencies(latencies []sim.SimTime) LatencyReport {
	if len(latencies) == 0 {
		return LatencyReport{}
	}
	ms := make([]float64, len(latencies))
	for i, l := range latencies {
		ms[i] = l.Millis()
	}
	sort.Float64s(ms)
	return LatencyReport{
		Count: len(ms),
		Mean:  stat.Mean(ms, nil),
		Min:   ms[0],
		P50:   stat.Quantile(0.50, stat.LinInterp, ms, nil),
		P90:   stat.Quantile(0.90, stat.LinInterp, ms, nil),
		P99:   stat.Quantile(0.99, stat.LinInterp, ms, nil),
		Max:   ms[len(ms)-1],
	}
}

func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// Print writes a human-readable summary.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Elapsed              : %.3f ms\n", r.ElapsedMs)
	fmt.Fprintf(w, "Generated Requests   : %d\n", r.Generated)
	fmt.Fprintf(w, "Completed Requests   : %d\n", r.Completed)
	fmt.Fprintf(w, "Failed Requests      : %d\n", r.Failed)
	fmt.Fprintf(w, "Timed Out Requests   : %d\n", r.TimedOut)
	fmt.Fprintf(w, "Retries              : %d\n", r.Retries)
	fmt.Fprintf(w, "Dropped on Links     : %d\n", r.Dropped)
	fmt.Fprintf(w, "Throughput           : %.2f req/s\n", r.ThroughputRPS)
	if r.Latency.Count > 0 {
		fmt.Fprintf(w, "Latency mean/p50/p90/p99 : %.2f / %.2f / %.2f / %.2f ms\n",
			r.Latency.Mean, r.Latency.P50, r.Latency.P90, r.Latency.P99)
	}
	for _, c := range r.Components {
		fmt.Fprintf(w, "  %-16s %-8s served=%d failed=%d rejected=%d util=%.2f peak_queue=%d",
			c.ID, c.Category, c.Served, c.Failed, c.Rejected, c.Utilization, c.PeakQueue)
		if c.Category == string(sim.CategoryCache) {
			fmt.Fprintf(w, " hit_ratio=%.2f", c.CacheHitRatio)
		}
		fmt.Fprintln(w)
	}
	for _, l := range r.Links {
		fmt.Fprintf(w, "  %-16s sent=%d delivered=%d dropped=%d\n", l.ID, l.Sent, l.Delivered, l.Dropped)
	}
}
