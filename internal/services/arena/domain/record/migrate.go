package record

import (
	"fmt"

	apperrors "github.com/louisbranch/ironarena/internal/platform/errors"
)

// ErrInvalidMigration indicates the bytes are not a migratable player record.
var ErrInvalidMigration = apperrors.New(apperrors.CodeMigrationInvalid, "record is not a valid legacy player record")

// Migrate grows a legacy player record to the current layout. Newly appended
// bytes are zero, which coincides exactly with registration defaults for the
// added fields (talent ranks 0, manual_build false).
//
// A record already at the current size is returned unchanged; anything larger
// than the current layout, shorter than the legacy layout, or carrying the
// wrong type tag fails with ErrInvalidMigration. The input is never mutated.
func Migrate(data []byte) ([]byte, error) {
	if len(data) == EncodedSize {
		return data, nil
	}
	if len(data) > EncodedSize {
		return nil, apperrors.Wrap(
			apperrors.CodeMigrationInvalid,
			"record larger than current layout",
			fmt.Errorf("record length %d exceeds %d", len(data), EncodedSize),
		)
	}
	if len(data) < LegacyEncodedSize {
		return nil, apperrors.Wrap(
			apperrors.CodeMigrationInvalid,
			"record shorter than legacy layout",
			fmt.Errorf("record length %d below %d", len(data), LegacyEncodedSize),
		)
	}
	if [tagLen]byte(data[:tagLen]) != TypeTag {
		return nil, ErrInvalidMigration
	}

	grown := make([]byte, EncodedSize)
	copy(grown, data)
	return grown, nil
}
