package export

import "fmt"

// Dataset is tabular export content. Rows are keyed by header.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

func (d Dataset) validate(format string) error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("%s requires at least one header", format)
	}
	return nil
}

// record returns row i in header order.
func (d Dataset) record(i int) []string {
	out := make([]string, len(d.Headers))
	for j, h := range d.Headers {
		out[j] = d.Rows[i][h]
	}
	return out
}
