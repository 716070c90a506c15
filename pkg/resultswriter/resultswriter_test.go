package resultswriter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWriterHeaderAndPrecision(t *testing.T) {
	rows := []Row{
		{Scheduler: "EQUI", Parameter: "servers", Value: "100", AverageProcessingTime: 1.5, AvgRealTime: 0.000123456789},
		{Scheduler: "R3", Parameter: "servers", Value: "100", AverageProcessingTime: 2.25, AvgRealTime: 0.1},
	}

	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter().Write(rows, &buf))

	lines := bytes.Split(bytes.TrimRight(buf.Bytes(), "\n"), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Equal(t, "Scheduler,Parameter,Value,AverageProcessingTime,AvgRealTime", string(lines[0]))
	assert.Equal(t, "EQUI,servers,100,1.5000000,0.0001235", string(lines[1]))
	assert.Equal(t, "R3,servers,100,2.2500000,0.1000000", string(lines[2]))
}

type summary struct {
	Trials int     `json:"trials"`
	Mean   float64 `json:"mean"`
}

func TestJSONWriterRoundTrip(t *testing.T) {
	w := NewJSONWriter[summary]()
	var buf bytes.Buffer
	require.NoError(t, w.Write(summary{Trials: 10, Mean: 1.5}, &buf))
	assert.JSONEq(t, `{"trials":10,"mean":1.5}`, buf.String())
}
