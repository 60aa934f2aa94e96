package generator

import (
	"path"
	"time"

	"github.com/google/uuid"
)

// Generator is an interface that defines a method to generate a new value of type T.
type Generator[T any] interface {
	Next() (T, error)
}

// UUIDV4Generator produces UUIDv4 strings.
type UUIDV4Generator struct{}

func (g *UUIDV4Generator) Next() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

var _ Generator[string] = &UUIDV4Generator{}

// ExportKeyGenerator produces object key prefixes of the form
// exports/YYYY/MM/DD/<id>, dated in UTC.
type ExportKeyGenerator struct {
	Prefix string
	IDs    Generator[string]
	Now    func() time.Time
}

func NewExportKeyGenerator() *ExportKeyGenerator {
	return &ExportKeyGenerator{
		Prefix: "exports",
		IDs:    &UUIDV4Generator{},
		Now:    time.Now,
	}
}

func (g *ExportKeyGenerator) Next() (string, error) {
	id, err := g.IDs.Next()
	if err != nil {
		return "", err
	}
	return path.Join(g.Prefix, g.Now().UTC().Format("2006/01/02"), id), nil
}

var _ Generator[string] = (*ExportKeyGenerator)(nil)
