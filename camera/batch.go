package camera

import (
	"context"
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/cameramodels/utils"
)

// cancelCheckInterval is how many items a parallel worker processes between context checks.
const cancelCheckInterval = 1024

// ProjectAll projects every point. The model is resolved once for the whole batch.
func (c Camera) ProjectAll(points []r3.Vector) ([]r2.Point, error) {
	model, err := c.resolve()
	if err != nil {
		return nil, err
	}
	out := make([]r2.Point, len(points))
	for i, p := range points {
		out[i] = model.Project(c.params, p)
	}
	return out, nil
}

// UnprojectAll unprojects every pixel.
func (c Camera) UnprojectAll(pixels []r2.Point) ([]r3.Vector, error) {
	model, err := c.resolve()
	if err != nil {
		return nil, err
	}
	out := make([]r3.Vector, len(pixels))
	for i, px := range pixels {
		out[i] = model.Unproject(c.params, px)
	}
	return out, nil
}

// ProjectAllParallel is ProjectAll spread over utils.ParallelFactor goroutines. It stops early and
// returns the context's error if ctx is cancelled.
func (c Camera) ProjectAllParallel(ctx context.Context, points []r3.Vector) ([]r2.Point, error) {
	model, err := c.resolve()
	if err != nil {
		return nil, err
	}
	out := make([]r2.Point, len(points))
	err = utils.GroupWorkParallel(ctx, len(points), func(ctx context.Context, from, to int) error {
		for i := from; i < to; i++ {
			if (i-from)%cancelCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			out[i] = model.Project(c.params, points[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UnprojectAllParallel is UnprojectAll spread over utils.ParallelFactor goroutines.
func (c Camera) UnprojectAllParallel(ctx context.Context, pixels []r2.Point) ([]r3.Vector, error) {
	model, err := c.resolve()
	if err != nil {
		return nil, err
	}
	out := make([]r3.Vector, len(pixels))
	err = utils.GroupWorkParallel(ctx, len(pixels), func(ctx context.Context, from, to int) error {
		for i := from; i < to; i++ {
			if (i-from)%cancelCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			out[i] = model.Unproject(c.params, pixels[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReprojectionErrors returns, for each correspondence, the pixel distance between the
// projection of points[i] and observations[i].
func (c Camera) ReprojectionErrors(points []r3.Vector, observations []r2.Point) ([]float64, error) {
	if len(points) != len(observations) {
		return nil, errors.Errorf("got %d points but %d observations", len(points), len(observations))
	}
	projected, err := c.ProjectAll(points)
	if err != nil {
		return nil, err
	}
	residuals := make([]float64, len(projected))
	for i, px := range projected {
		residuals[i] = px.Sub(observations[i]).Norm()
	}
	return residuals, nil
}

// ReprojectionStats summarizes reprojection errors in pixels.
type ReprojectionStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean_px"`
	Median float64 `json:"median_px"`
	RMS    float64 `json:"rms_px"`
	Max    float64 `json:"max_px"`
}

// ComputeReprojectionStats projects every point and summarizes the distances to the observations.
func (c Camera) ComputeReprojectionStats(points []r3.Vector, observations []r2.Point) (ReprojectionStats, error) {
	residuals, err := c.ReprojectionErrors(points, observations)
	if err != nil {
		return ReprojectionStats{}, err
	}
	if len(residuals) == 0 {
		return ReprojectionStats{}, errors.New("cannot summarize reprojection errors without correspondences")
	}
	mean, err := stats.Mean(residuals)
	if err != nil {
		return ReprojectionStats{}, err
	}
	median, err := stats.Median(residuals)
	if err != nil {
		return ReprojectionStats{}, err
	}
	maxErr, err := stats.Max(residuals)
	if err != nil {
		return ReprojectionStats{}, err
	}
	return ReprojectionStats{
		Count:  len(residuals),
		Mean:   mean,
		Median: median,
		RMS:    floats.Norm(residuals, 2) / math.Sqrt(float64(len(residuals))),
		Max:    maxErr,
	}, nil
}
