package metrics

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// writeMetric writes a single metric in Prometheus text format. Metrics with
// no samples yet are omitted entirely.
func writeMetric(w io.Writer, m Metric) error {
	samples := m.Collect()
	if len(samples) == 0 {
		return nil
	}

	if _, err := fmt.Fprintf(w, "# HELP %s %s\n", m.Name(), escapeHelp(m.Help())); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "# TYPE %s %s\n", m.Name(), m.Type()); err != nil {
		return err
	}

	for _, s := range samples {
		if err := writeSample(w, s); err != nil {
			return err
		}
	}
	return nil
}

// writeSample writes a single sample line.
func writeSample(w io.Writer, s Sample) error {
	var err error
	if len(s.Labels) == 0 {
		_, err = fmt.Fprintf(w, "%s %s\n", s.Name, formatFloat(s.Value))
	} else {
		_, err = fmt.Fprintf(w, "%s{%s} %s\n", s.Name, formatLabels(s.Labels), formatFloat(s.Value))
	}
	return err
}

// formatLabels formats ordered label pairs as key="value",key="value".
func formatLabels(labels []LabelPair) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = fmt.Sprintf("%s=\"%s\"", l.Name, escapeLabelValue(l.Value))
	}
	return strings.Join(parts, ",")
}

// formatFloat formats a float64 for Prometheus output in a canonical decimal
// form that is stable across calls.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	if math.IsInf(v, 1) {
		return "+Inf"
	}
	if math.IsInf(v, -1) {
		return "-Inf"
	}
	// Use %g for compact representation; whole numbers render without a
	// decimal point or exponent.
	s := fmt.Sprintf("%g", v)
	if v == float64(int64(v)) && !strings.Contains(s, ".") && !strings.Contains(s, "e") {
		return fmt.Sprintf("%.0f", v)
	}
	return s
}

// escapeHelp escapes help text for Prometheus format.
func escapeHelp(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// escapeLabelValue escapes label values for Prometheus format.
func escapeLabelValue(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
