package solpos

import (
	"errors"
	"time"

	cerrors "cloudeng.io/errors"

	"github.com/litescript/ls-solpos/internal/timeutil"
)

// prepare validates a batch and normalizes it to UTC. Every bad instant is
// reported; the batch either passes as a whole or fails as a whole.
func prepare(instants []time.Time, loc Location, atm Atmosphere) ([]time.Time, *time.Location, error) {
	if err := loc.Validate(); err != nil {
		return nil, nil, err
	}
	zone, err := loc.Zone()
	if err != nil {
		return nil, nil, err
	}

	errs := &cerrors.M{}
	for i, t := range instants {
		if t.IsZero() {
			errs.Append(&InputError{Index: i, Field: "time", Reason: timeutil.ErrZeroTime.Error()})
		}
	}
	errs.Append(atm.Validate(len(instants)))
	if err := errs.Err(); err != nil {
		return nil, nil, err
	}

	utc, err := timeutil.ToUTC(instants)
	if err != nil {
		return nil, nil, &InputError{Index: -1, Field: "time", Reason: err.Error()}
	}
	return utc, zone, nil
}

// Prepare validates a batch the way every Calculator does and returns the
// instants in UTC along with the location's zone. It is exported for
// calculators implemented outside this package.
func Prepare(instants []time.Time, loc Location, atm Atmosphere) ([]time.Time, *time.Location, error) {
	return prepare(instants, loc, atm)
}

// IsInputError reports whether err, or any error it collects, is ErrInput.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInput)
}
