package async

// A Mailbox holds in-flight AsyncErrors together with the callbacks to run
// once they complete. Work happens on other goroutines; callbacks only ever
// run on the goroutine that calls ProcessMessages, one at a time, in the
// order the AsyncErrors were created.
//
// A Mailbox is not safe for concurrent use.
type Mailbox struct {
	msgs []message
}

// AsyncErrorResponseHandler is invoked with the value of a completed AsyncError.
type AsyncErrorResponseHandler func(error)

type message struct {
	Err      *AsyncError
	callback AsyncErrorResponseHandler
}

func NewMailbox() *Mailbox {
	return &Mailbox{
		msgs: make([]message, 0),
	}
}

// Count is the number of messages whose callbacks have not yet run.
func (bx *Mailbox) Count() int {
	return len(bx.msgs)
}

// NewAsyncError registers cb to run on the first ProcessMessages call after
// the returned AsyncError is completed.
func (bx *Mailbox) NewAsyncError(cb AsyncErrorResponseHandler) *AsyncError {
	msg := message{Err: newAsyncError(), callback: cb}
	bx.msgs = append(bx.msgs, msg)
	return msg.Err
}

// ProcessMessages runs the callback of every completed message and drops
// those messages. It returns how many callbacks ran.
func (bx *Mailbox) ProcessMessages() int {
	pending := bx.msgs[:0]
	done := 0
	for _, msg := range bx.msgs {
		if ok, err := msg.Err.TryGetValue(); ok {
			msg.callback(err)
			done++
		} else {
			pending = append(pending, msg)
		}
	}
	// clear the tail so completed messages can be collected
	for i := len(pending); i < len(bx.msgs); i++ {
		bx.msgs[i] = message{}
	}
	bx.msgs = pending
	return done
}
