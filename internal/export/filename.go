package export

import (
	"fmt"
	"strings"
	"time"
)

// Filename returns orders_YYYYMMDD_HHmm.csv for t in its own location,
// or orders_all.csv when t is the zero time.
func Filename(t time.Time) string {
	if t.IsZero() {
		return "orders_all.csv"
	}
	return fmt.Sprintf("orders_%s.csv", t.Format("20060102_1504"))
}

// SequencedFilename returns Filename(t) for seq <= 1, otherwise the same name with
// _<seq> before the extension (orders_20240307_0905_2.csv).
func SequencedFilename(t time.Time, seq int) string {
	name := Filename(t)
	if seq <= 1 {
		return name
	}
	return fmt.Sprintf("%s_%d.csv", strings.TrimSuffix(name, ".csv"), seq)
}
