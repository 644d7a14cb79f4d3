package export

import (
	"encoding/json"
	"fmt"

	"tradeboard/internal/model"
)

// JSON encodes records as an ordered array of objects keyed
// year, exports, imports, trade_balance.
func JSON(records []model.Record) ([]byte, error) {
	if records == nil {
		records = []model.Record{}
	}
	return json.Marshal(records)
}

func ParseJSON(data []byte) ([]model.Record, error) {
	var records []model.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return records, nil
}
