package widget

import "github.com/papercomputeco/chatwidget/pkg/chat"

// Reply tracks one outstanding exchange.
type Reply struct {
	done chan struct{}
	msg  chat.Message
	err  error
}

func newReply() *Reply {
	return &Reply{done: make(chan struct{})}
}

func (r *Reply) resolve(msg chat.Message, err error) {
	r.msg = msg
	r.err = err
	close(r.done)
}

// Done is closed once the reply message has been appended.
func (r *Reply) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the exchange completes and returns the appended message:
// the answer, or the fallback apology.
func (r *Reply) Wait() chat.Message {
	<-r.done
	return r.msg
}

// Err returns the failure that produced the fallback message, if any. It is
// only meaningful after Done is closed and is never shown to the user.
func (r *Reply) Err() error {
	<-r.done
	return r.err
}
