package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/crosscheck/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSummary(t *testing.T) {
	summary := report.NewRunSummary()
	summary.Add(report.PartitionResult{Stage: report.StageCatalog, Key: "Catalogo", Status: report.StatusSuccess, Rows: 12})
	summary.Add(report.PartitionResult{Stage: report.StageProviders, Key: "provA", Status: report.StatusSkipped, Reason: "before start-from provider"})
	summary.Add(report.PartitionResult{Stage: report.StageLedger, Key: "bad", Status: report.StatusFailed, Reason: errors.New("not RUT/Location").Error()})

	out := RenderSummary(summary)

	assert.Contains(t, out, "Report finished with failures")
	assert.Contains(t, out, "Catalogo (12 rows)")
	assert.Contains(t, out, "provA")
	assert.Contains(t, out, "before start-from provider")
	assert.Contains(t, out, "not RUT/Location")
	assert.Contains(t, out, "1 written")
	assert.Contains(t, out, "1 skipped")
	assert.Contains(t, out, "1 failed")
}

func TestRenderSummary_Clean(t *testing.T) {
	summary := report.NewRunSummary()
	summary.Add(report.PartitionResult{Stage: report.StageMatrix, Key: "Cruce", Status: report.StatusSuccess, Rows: 3})

	out := RenderSummary(summary)
	assert.Contains(t, out, "Report complete")
	assert.Contains(t, out, "0 failed")
}

func TestInterruptHandler(t *testing.T) {
	var out bytes.Buffer
	h := NewInterruptHandler(&out)
	ctx := h.HandleInterrupts(context.Background())

	select {
	case <-ctx.Done():
		t.Fatal("context canceled before interrupt")
	default:
	}
	assert.False(t, h.WasInterrupted())

	h.interrupt()
	h.interrupt()

	<-ctx.Done()
	require.True(t, h.WasInterrupted())
	assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte("Report interrupted!")))
	assert.Contains(t, out.String(), "--start-from")
}

func TestNewInterruptHandler_DefaultWriter(t *testing.T) {
	h := NewInterruptHandler(nil)
	assert.NotNil(t, h.writer)
}

func TestFormatters(t *testing.T) {
	assert.Contains(t, FormatSuccess("done"), "done")
	assert.Contains(t, FormatError("boom"), "boom")
	assert.Contains(t, FormatWarning("careful"), "careful")
	assert.Contains(t, FormatInfo("note"), "note")
	assert.Contains(t, FormatTitle("crosscheck"), "crosscheck")
	assert.Contains(t, RenderBox("Title", "body"), "body")
}
