package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// LocalDateTimeLayout es el formato de fecha-hora local del payload, sin zona.
const LocalDateTimeLayout = "2006-01-02T15:04:05"

var ErrMalformedEvent = errors.New("malformed task event")

// LocalDateTime serializa una fecha-hora de pared con LocalDateTimeLayout.
// Al decodificar se interpreta en la zona local del proceso.
type LocalDateTime struct {
	time.Time
}

func (t LocalDateTime) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.Time.Format(LocalDateTimeLayout))), nil
}

func (t *LocalDateTime) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("local date-time must be a string: %w", err)
	}
	parsed, err := time.ParseInLocation(LocalDateTimeLayout, s, time.Local)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// Ptr devuelve nil para punteros nulos; simplifica el paso a campos opcionales.
func (t *LocalDateTime) Ptr() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}

// NewLocalDateTime envuelve un *time.Time opcional.
func NewLocalDateTime(t *time.Time) *LocalDateTime {
	if t == nil {
		return nil
	}
	return &LocalDateTime{Time: *t}
}

// TaskCreated es el contrato de integración publicado una vez por cada tarea creada.
// No es la entidad de dominio: viaja plano entre procesos.
type TaskCreated struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	Start       *LocalDateTime `json:"start"`
	End         *LocalDateTime `json:"end"`
	IsCompleted bool           `json:"isCompleted"`
	Type        string         `json:"type,omitempty"`
	UserID      *int64         `json:"userId"`
}

// PartitionKey agrupa los eventos de una misma tarea en la misma partición.
func (e TaskCreated) PartitionKey() string {
	return strconv.FormatInt(e.ID, 10)
}

// EncodeTaskCreated serializa el evento como JSON con los nombres de campo del contrato.
func EncodeTaskCreated(evt TaskCreated) ([]byte, error) {
	return json.Marshal(evt)
}

// DecodeTaskCreated tolera campos desconocidos y opcionales ausentes.
// Acepta "completed" como alias de "isCompleted".
func DecodeTaskCreated(payload []byte) (TaskCreated, error) {
	var aux struct {
		TaskCreated
		Completed *bool `json:"completed"`
	}
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return TaskCreated{}, fmt.Errorf("%w: empty payload", ErrMalformedEvent)
	}
	if err := json.Unmarshal(payload, &aux); err != nil {
		return TaskCreated{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	evt := aux.TaskCreated
	if aux.Completed != nil && !evt.IsCompleted {
		evt.IsCompleted = *aux.Completed
	}
	return evt, nil
}
