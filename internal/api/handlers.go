package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"signalscope-go/internal/logger"
	"signalscope-go/internal/model"
	"signalscope-go/internal/predictor"
	"signalscope-go/internal/session"
)

// level lines extend this many bars past the last candle
const levelExtension = 20

// ChartPoint is one {time, value} sample of a line series
type ChartPoint struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

// ChartSeries is a styled overlay line
type ChartSeries struct {
	Name   string       `json:"name"`
	Color  string       `json:"color"`
	Dashed bool         `json:"dashed"`
	Points []ChartPoint `json:"points"`
}

// Chart carries everything a client needs to draw one timeframe
type Chart struct {
	Symbol    string          `json:"symbol"`
	Timeframe model.Timeframe `json:"timeframe"`
	Trend     predictor.Trend `json:"trend"`
	Candles   []model.Candle  `json:"candles"`
	Series    []ChartSeries   `json:"series"`
}

func (s *Server) handleHealth(c *gin.Context) {
	sessions := s.registry.List()
	ready := 0
	for _, sess := range sessions {
		if sess.Latest() != nil {
			ready++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"symbol":   s.config.Symbol,
		"sessions": len(sessions),
		"ready":    ready,
		"uptime":   time.Since(s.startedAt).Round(time.Second).String(),
	})
}

func (s *Server) handleTimeframes(c *gin.Context) {
	successResponse(c, gin.H{
		"supported": model.SupportedTimeframes,
		"active":    s.config.Timeframes,
	})
}

func (s *Server) handleStats(c *gin.Context) {
	if s.stats == nil {
		errorResponse(c, http.StatusServiceUnavailable, "24h stats are not configured")
		return
	}

	stats, fetchedAt, err := s.stats.get(c.Request.Context(), s.config.Symbol)
	if err != nil {
		logger.Warn("⚠️  [API] 24h stats unavailable", zap.String("symbol", s.config.Symbol), zap.Error(err))
		errorResponse(c, http.StatusBadGateway, "24h stats unavailable")
		return
	}
	successResponse(c, gin.H{
		"stats":      stats,
		"fetched_at": fetchedAt,
	})
}

// session resolves the :timeframe param, writing the error response itself
func (s *Server) session(c *gin.Context) (*session.Session, bool) {
	tf, err := model.ParseTimeframe(c.Param("timeframe"))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return nil, false
	}
	sess, ok := s.registry.Get(s.config.Symbol, tf)
	if !ok {
		errorResponse(c, http.StatusNotFound, "timeframe "+tf.String()+" is not being tracked")
		return nil, false
	}
	return sess, true
}

func (s *Server) latest(c *gin.Context) (*session.Session, *predictor.Prediction, bool) {
	sess, ok := s.session(c)
	if !ok {
		return nil, nil, false
	}
	pred := sess.Latest()
	if pred == nil {
		errorResponse(c, http.StatusNotFound, "no prediction yet for "+sess.Timeframe.String())
		return nil, nil, false
	}
	return sess, pred, true
}

func (s *Server) handlePrediction(c *gin.Context) {
	sess, pred, ok := s.latest(c)
	if !ok {
		return
	}
	successResponse(c, gin.H{
		"symbol":     sess.Symbol,
		"updated_at": sess.LastRun(),
		"prediction": pred,
	})
}

func (s *Server) handleCandles(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}

	candles := sess.Candles().Snapshot()
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			errorResponse(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		candles = model.Tail(candles, limit)
	}
	successResponse(c, candles)
}

func (s *Server) handleChart(c *gin.Context) {
	sess, pred, ok := s.latest(c)
	if !ok {
		return
	}
	successResponse(c, BuildChart(sess.Symbol, sess.Candles().Snapshot(), pred))
}

// BuildChart lays out the overlay series for a prediction: the projected path,
// the trendline when it is drawable, and flat support/resistance lines
func BuildChart(symbol string, candles []model.Candle, pred *predictor.Prediction) Chart {
	chart := Chart{
		Symbol:    symbol,
		Timeframe: pred.Timeframe,
		Trend:     pred.Trend,
		Candles:   candles,
		Series:    []ChartSeries{},
	}

	if len(pred.FuturePrices) > 0 {
		points := make([]ChartPoint, len(pred.FuturePrices))
		for i, p := range pred.FuturePrices {
			points[i] = ChartPoint{Time: p.Time, Value: p.Value}
		}
		chart.Series = append(chart.Series, ChartSeries{Name: "Prediction", Color: "#667eea", Dashed: true, Points: points})
	}

	if tl := pred.Trendline; tl != nil && tl.Draw {
		color := "#ef5350"
		if pred.Trend == predictor.TrendBullish {
			color = "#26a69a"
		}
		points := make([]ChartPoint, len(tl.Points))
		for i, p := range tl.Points {
			points[i] = ChartPoint{Time: p.Time, Value: p.Value}
		}
		chart.Series = append(chart.Series, ChartSeries{Name: "Trendline", Color: color, Points: points})
	}

	if len(candles) == 0 {
		return chart
	}
	first := candles[0].Time
	end := candles[len(candles)-1].Time + pred.Timeframe.Seconds()*levelExtension

	levels := []struct {
		name, color string
		value       float64
	}{
		{"Support", "#26a69a", pred.Indicators.Levels.Support},
		{"Resistance", "#ef5350", pred.Indicators.Levels.Resistance},
	}
	for _, lvl := range levels {
		if lvl.value == 0 {
			continue
		}
		chart.Series = append(chart.Series, ChartSeries{
			Name:   lvl.name,
			Color:  lvl.color,
			Dashed: true,
			Points: []ChartPoint{{Time: first, Value: lvl.value}, {Time: end, Value: lvl.value}},
		})
	}
	return chart
}
