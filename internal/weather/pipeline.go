package weather

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// User-facing notices for the optional air-quality step. The "not available"
// form means the provider answered with zero samples; the "could not fetch"
// form means the request itself failed. Neither aborts the run.
const (
	aqiNoDataMessage      = "Air quality data not available for this location."
	aqiFetchFailedMessage = "Could not fetch air quality data."
)

// Placeholder text per narrative slot when the provider returns no usable
// candidate, and the failure reason when the call itself errors.
const (
	overviewFallback = "Could not generate AI summary."
	hourlyFallback   = "Could not generate hourly recommendations."
	alertFallback    = "Could not check for extreme weather alerts."
	clothingFallback = "Could not generate clothing recommendation."

	overviewFailure = "Error generating AI summary."
	hourlyFailure   = "Error generating hourly recommendations."
	alertFailure    = "Error checking for extreme weather alerts."
	clothingFailure = "Error generating clothing recommendation."
)

// Pipeline aggregates one location's weather view: current conditions (required),
// air quality (optional), forecast (required), the daily digest derived from it,
// and four independently-generated narrative texts.
//
// A Pipeline is safe for concurrent use. Runs do not cancel each other; every
// result carries the generation it was started under, and callers that issue
// overlapping runs should discard any result whose Generation is below
// Latest().
type Pipeline struct {
	source   WeatherSource
	narrator Narrator
	history  HistoryRecorder
	log      *logrus.Logger

	generation atomic.Uint64

	mu        sync.Mutex
	lastQuery *Query
}

// NewPipeline wires the pipeline's collaborators. history and narrator may be
// nil; the corresponding steps are then skipped (narrative slots stay pending).
func NewPipeline(source WeatherSource, narrator Narrator, history HistoryRecorder, log *logrus.Logger) *Pipeline {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pipeline{
		source:   source,
		narrator: narrator,
		history:  history,
		log:      log,
	}
}

// Latest returns the generation of the most recently started run.
func (p *Pipeline) Latest() uint64 {
	return p.generation.Load()
}

// Run executes the aggregation sequence for one location query. A failure of
// the current-conditions or forecast fetch aborts the run and returns a nil
// result; air-quality and narrative failures are confined to their fields.
func (p *Pipeline) Run(ctx context.Context, q Query, units Units) (*AggregateResult, error) {
	gen := p.generation.Add(1)
	log := p.log.WithFields(logrus.Fields{"run": uuid.NewString(), "generation": gen})

	if !units.Valid() {
		units = UnitsMetric
	}
	if q.IsEmpty() {
		return nil, ErrEmptyQuery
	}
	if !p.source.Configured() {
		return nil, ErrMissingCredential
	}

	// Required fetch: everything downstream depends on the provider-corrected
	// coordinates and place name in this response.
	current, err := p.source.Current(ctx, q, units)
	if err != nil {
		log.WithError(err).Error("current conditions fetch failed")
		return nil, err
	}
	coord := current.Coord

	res := &AggregateResult{
		Generation: gen,
		Units:      units,
		PlaceName:  current.PlaceName,
		Current:    current,
		LocalTime:  FormatClock(current.ObservedAt, current.TimezoneOffset),
		Narratives: pendingBundle(),
		MapURL:     mapURL(coord),
	}

	if current.PlaceName != "" && p.history != nil {
		if err := p.history.RememberSearch(current.PlaceName); err != nil {
			log.WithError(err).Warn("failed to record search history")
		}
	}

	// Air quality and forecast are independent of each other and write to
	// disjoint fields. Only the forecast error escalates; three of the four
	// narrative prompts feed on forecast-derived data.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sample, err := p.source.AirQuality(gctx, coord)
		switch {
		case errors.Is(err, ErrNoAirData):
			res.AirNotice = aqiNoDataMessage
		case err != nil:
			log.WithError(err).Warn("air quality fetch failed")
			res.AirNotice = aqiFetchFailedMessage
		default:
			res.Air = sample
		}
		return nil
	})
	g.Go(func() error {
		series, err := p.source.Forecast(gctx, coord, units)
		if err != nil {
			return err
		}
		res.Forecast = series
		return nil
	})
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("forecast fetch failed")
		return nil, err
	}

	res.Daily = ReduceDaily(res.Forecast, current.TimezoneOffset)

	in := PromptInput{
		Current: current,
		Air:     res.Air,
		Daily:   res.Daily,
		Hourly:  res.Forecast,
		Units:   units,
	}
	if breaches := DetectExtremes(in); len(breaches) > 0 {
		log.Warnf("extreme conditions detected for %s: %s", current.PlaceName, strings.Join(breaches, "; "))
	}

	p.generateNarratives(ctx, log, in, res)

	p.mu.Lock()
	if current.PlaceName != "" {
		last := TextQuery(current.PlaceName)
		p.lastQuery = &last
	} else {
		p.lastQuery = &q
	}
	p.mu.Unlock()

	return res, nil
}

// Refresh re-runs the last successful query with a new unit system. This is
// the explicit entry point for unit changes; the pipeline has no implicit
// reactivity.
func (p *Pipeline) Refresh(ctx context.Context, units Units) (*AggregateResult, error) {
	p.mu.Lock()
	last := p.lastQuery
	p.mu.Unlock()

	if last == nil {
		return nil, ErrEmptyQuery
	}
	return p.Run(ctx, *last, units)
}

// generateNarratives fans out the four narrative calls. Each goroutine writes
// only its own slot, so no locking is needed, and one slot's failure never
// touches another.
func (p *Pipeline) generateNarratives(ctx context.Context, log *logrus.Entry, in PromptInput, res *AggregateResult) {
	if p.narrator == nil {
		return
	}

	type job struct {
		slot     *NarrativeSlot
		prompt   string
		fallback string
		failure  string
	}
	jobs := []job{
		{&res.Narratives.Overview, OverviewPrompt(in), overviewFallback, overviewFailure},
		{&res.Narratives.Hourly, HourlyPrompt(in), hourlyFallback, hourlyFailure},
		{&res.Narratives.Alert, AlertPrompt(in), alertFallback, alertFailure},
		{&res.Narratives.Clothing, ClothingPrompt(in), clothingFallback, clothingFailure},
	}

	var wg sync.WaitGroup
	for _, j := range jobs {
		j := j
		wg.Add(1)
		go func() {
			defer wg.Done()

			text, err := p.narrator.Generate(ctx, j.prompt)
			switch {
			case errors.Is(err, ErrNoUsableText):
				*j.slot = readySlot(j.fallback)
			case err != nil:
				log.WithError(err).Warn("narrative generation failed")
				*j.slot = failedSlot(j.failure)
			default:
				*j.slot = readySlot(text)
			}
		}()
	}
	wg.Wait()
}

func mapURL(coord Coordinates) string {
	return fmt.Sprintf("https://maps.google.com/maps?q=%s,%s&z=10&output=embed",
		formatCoord(coord.Lat), formatCoord(coord.Lon))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
