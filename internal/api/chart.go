package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/trackside-data/pitchclip/internal/httputil"
	"github.com/trackside-data/pitchclip/internal/tracking"
)

// frameChart renders one frame as an interactive echarts scatter. It is the
// fallback view for clients that cannot display the raster preview.
func (s *Server) frameChart(w http.ResponseWriter, r *http.Request) {
	matchID, sess := s.requireSession(w, r)
	if sess == nil {
		return
	}
	index, ok := frameIndex(w, r, sess)
	if !ok {
		return
	}

	frame := &sess.payloads[index]
	meta := &sess.meta

	halfLength := meta.PitchLength / 2
	halfWidth := meta.PitchWidth / 2

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: fmt.Sprintf("Match %s - %s", matchID, frame.Label),
			Width:     "960px",
			Height:    "640px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s vs %s", meta.HomeTeam, meta.AwayTeam),
			Subtitle: frame.Label,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -halfLength, Max: halfLength, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -halfWidth, Max: halfWidth, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
	)

	scatter.AddSeries(meta.HomeTeam, playerScatterData(frame.HomePlayers),
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 14}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#3498DB"}),
	)
	scatter.AddSeries(meta.AwayTeam, playerScatterData(frame.AwayPlayers),
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 14}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#E74C3C"}),
	)
	if frame.Ball != nil && frame.Ball.X != nil && frame.Ball.Y != nil {
		scatter.AddSeries("Ball", []opts.ScatterData{
			{Value: []interface{}{*frame.Ball.X, *frame.Ball.Y}, Name: "ball"},
		},
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 9}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#F1C40F"}),
		)
	}

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func playerScatterData(players []tracking.PlayerPayload) []opts.ScatterData {
	data := make([]opts.ScatterData, 0, len(players))
	for i := range players {
		p := &players[i]
		data = append(data, opts.ScatterData{
			Name:  p.Label,
			Value: []interface{}{p.X, p.Y},
		})
	}
	return data
}
