package app

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"spatial-plot/internal/domain"
	"spatial-plot/pkg/plotting"
)

type CircleChecker struct {
	logger *zap.Logger
	config *domain.Config
}

var _ domain.CheckService = (*CircleChecker)(nil)

func NewCircleChecker(logger *zap.Logger, config *domain.Config) *CircleChecker {
	return &CircleChecker{
		logger: logger,
		config: config,
	}
}

// Check turns every record into a circle, spreads the valid ones over
// the regions of a fresh subplot grid round-robin, autoscales each region
// and draws the figure. Invalid records are reported, not fatal; a
// figure that cannot be built is.
func (c *CircleChecker) Check(records []domain.CircleRecord) (*domain.Report, error) {
	if len(records) == 0 {
		return nil, domain.ErrEmptyInput
	}

	fig, grid, err := plotting.SubplotGrid(
		plotting.WithLayout(c.config.Layout),
		plotting.WithFigure(plotting.WithFigureOptions(c.config.Figure)),
	)
	if err != nil {
		return nil, fmt.Errorf("build figure: %w", err)
	}
	defer func() {
		if err := fig.Close(); err != nil {
			c.logger.Warn("Failed to release figure", zap.Error(err))
		}
	}()

	axes := grid.Flat()
	w, h := fig.PixelSize()
	report := &domain.Report{
		PerRegion:  make([]int, len(axes)),
		PixelSize:  [2]int{w, h},
		BackendKey: fig.Backend(),
	}

	for _, record := range records {
		circle, err := c.buildCircle(record)
		if err != nil {
			c.reject(report, record.Line, err)
			continue
		}

		slot := report.Accepted % len(axes)
		if err := axes[slot].AddPatch(circle); err != nil {
			c.reject(report, record.Line, err)
			continue
		}
		report.Accepted++
		report.PerRegion[slot]++
	}

	margin := c.config.AutoscaleMargin()
	for _, ax := range axes {
		if err := ax.Autoscale(margin); err != nil {
			return nil, fmt.Errorf("autoscale: %w", err)
		}
	}
	if err := fig.Draw(); err != nil {
		return nil, fmt.Errorf("draw: %w", err)
	}

	for _, ax := range axes {
		xmin, xmax, err := ax.XLim()
		if err != nil {
			return nil, err
		}
		ymin, ymax, err := ax.YLim()
		if err != nil {
			return nil, err
		}
		report.Views = append(report.Views, plotting.View{XMin: xmin, XMax: xmax, YMin: ymin, YMax: ymax})
	}

	c.logger.Info("Circle check finished",
		zap.Int("accepted", report.Accepted),
		zap.Int("rejected", len(report.Rejected)),
		zap.Ints("per_region", report.PerRegion))

	return report, nil
}

func (c *CircleChecker) buildCircle(record domain.CircleRecord) (*plotting.Circle, error) {
	opts := []plotting.CircleOption{plotting.WithStyle(c.config.Circle)}
	if record.Radius != nil {
		opts = append(opts, plotting.WithRadius(*record.Radius))
	}
	return plotting.NewCircle(record.Center, opts...)
}

func (c *CircleChecker) reject(report *domain.Report, line int, err error) {
	if !errors.Is(err, plotting.ErrInvalidArgument) {
		c.logger.Warn("Unexpected rejection", zap.Int("line", line), zap.Error(err))
	}
	c.logger.Debug("Record rejected", zap.Int("line", line), zap.Error(err))
	report.Rejected = append(report.Rejected, domain.Rejection{Line: line, Reason: err.Error()})
}
