package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/yourorg/taskboard/internal/domain"
)

// mapDuplicate converts a Postgres unique-violation into a domain
// DuplicateError carrying the conflicting field name, derived from the
// constraint name (users_email_key -> email).
func mapDuplicate(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return err
	}

	field := pqErr.Constraint
	if parts := strings.Split(pqErr.Constraint, "_"); len(parts) >= 2 {
		field = parts[len(parts)-2]
	}
	return &domain.DuplicateError{Field: field}
}

func marshalJSON(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}
	return data, nil
}

func unmarshalJSON(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %T: %w", v, err)
	}
	return nil
}
