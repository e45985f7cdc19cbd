package station

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// FormatFrequency renders hz with an SI prefix, e.g. 15.62 mHz or 8.19 kHz.
func FormatFrequency(hz float64) string {
	v, suffix := humanize.ComputeSI(hz)
	return fmt.Sprintf("%0.2f %sHz", v, suffix)
}
