package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/njchilds90/derivtutor/derive"
)

// Record is one saved derivation.
type Record struct {
	ID          string        `json:"id"`
	Expression  string        `json:"expr"`
	Variable    string        `json:"variable"`
	Order       int           `json:"order"`
	ResultText  string        `json:"result"`
	ResultLatex string        `json:"latex"`
	Steps       []derive.Step `json:"steps,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
}

// NewRecord stamps a record with a fresh ID and the current UTC time.
func NewRecord(expression, variable string, order int, result, latex string, steps []derive.Step) Record {
	return Record{
		ID:          uuid.NewString(),
		Expression:  expression,
		Variable:    variable,
		Order:       order,
		ResultText:  result,
		ResultLatex: latex,
		Steps:       steps,
		Timestamp:   time.Now().UTC(),
	}
}
