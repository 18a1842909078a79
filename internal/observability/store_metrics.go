package observability

import (
	"errors"
	"io/fs"
	"time"

	"github.com/geocoder89/siteis/internal/domain/user"
	"github.com/geocoder89/siteis/internal/repo/jsonfile"
)

// ObserveStore times one logical JSON store operation.
func (p *Prom) ObserveStore(op string, fn func() error) error {
	start := time.Now()
	err := fn()

	status := "ok"

	if err != nil {
		status = "error"
		p.StoreErrorsTotal.WithLabelValues(op, classifyStoreErr(err)).Inc()
	}
	p.StoreOpDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
	return err
}

func classifyStoreErr(err error) string {
	switch {
	case errors.Is(err, user.ErrEmailAlreadyUsed):
		return "conflict"
	case errors.Is(err, jsonfile.ErrCorrupt):
		return "corrupt"
	case errors.Is(err, fs.ErrPermission):
		return "permission"
	default:
		return "io"
	}
}
