package station

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// identityFields is the number of trailing underscore separated segments
// that carry the station identity: L<line>, S<site>, D<dev>, C<ch>, <tag>.
const identityFields = 5

// ErrMalformedIdentity is returned when a file name does not follow the
// <prefix>_L<line>_S<site>_D<dev>_C<ch>_<tag> naming convention
var ErrMalformedIdentity = errors.New("malformed station identity")

// ID identifies one receiver channel on one survey line. It is comparable
// and can be used as a map key.
type ID struct {
	Line    int    `json:"line" yaml:"line"`
	Site    int    `json:"site" yaml:"site"`
	Device  int    `json:"device" yaml:"device"`
	Channel int    `json:"channel" yaml:"channel"`
	Tag     string `json:"tag" yaml:"tag"`
}

// ParseID extracts the station identity from a file base name such as
// FFT_SEC_V_T_L12_S034_D1_C2_X. The prefix may itself contain underscores;
// the identity is taken from the last five segments.
func ParseID(name string) (ID, error) {
	var segments []string
	for _, s := range strings.Split(name, "_") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) < identityFields+1 {
		return ID{}, fmt.Errorf("%w: %q has %d segments, want at least %d", ErrMalformedIdentity, name, len(segments), identityFields+1)
	}

	fields := segments[len(segments)-identityFields:]

	var id ID
	targets := []*int{&id.Line, &id.Site, &id.Device, &id.Channel}
	for i, target := range targets {
		v, err := parseTagged(fields[i])
		if err != nil {
			return ID{}, fmt.Errorf("%w: %q: %w", ErrMalformedIdentity, name, err)
		}
		*target = v
	}
	id.Tag = fields[identityFields-1]

	return id, nil
}

// parseTagged strips the single letter prefix of a numeric field (L12, S034)
// and parses the rest as an integer.
func parseTagged(field string) (int, error) {
	if len(field) < 2 {
		return 0, fmt.Errorf("field %q too short", field)
	}
	v, err := strconv.Atoi(field[1:])
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", field, err)
	}
	return v, nil
}

// String renders the identity in the file name convention, e.g. L12_S34_D1_C2_X.
func (id ID) String() string {
	return fmt.Sprintf("L%d_S%d_D%d_C%d_%s", id.Line, id.Site, id.Device, id.Channel, id.Tag)
}
