package jsonfile

import (
	"context"

	"github.com/geocoder89/siteis/internal/domain/contact"
)

type MessagesRepo struct {
	coll *Collection[contact.Message]
	options
}

func NewMessagesRepo(path string, opts ...Option) *MessagesRepo {
	return &MessagesRepo{
		coll:    NewCollection[contact.Message](path),
		options: buildOptions(opts),
	}
}

// Append adds one message to the end of the messages file. An unreadable
// file is left untouched and reported as an error.
func (r *MessagesRepo) Append(ctx context.Context, msg contact.Message) error {
	err := r.obs.ObserveStore("messages.append", func() error {
		return r.coll.Update(func(msgs []contact.Message) ([]contact.Message, error) {
			return append(msgs, msg), nil
		})
	})

	if err != nil {
		r.log.ErrorContext(ctx, "messages store write failed", "op", "append", "err", err)
		return err
	}
	return nil
}

func (r *MessagesRepo) List(ctx context.Context) ([]contact.Message, error) {
	return r.coll.Load()
}

func (r *MessagesRepo) Ping(ctx context.Context) error {
	return r.coll.Ensure()
}
