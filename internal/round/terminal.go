package round

import "github.com/taurusgroup/mpc-sign/pkg/party"

// terminal is the behaviour shared by the rounds which end an execution.
// They accept nothing, send nothing and finalize to themselves.
type terminal struct{}

func (terminal) VerifyMessage(Message) error { return nil }
func (terminal) StoreMessage(Message) error  { return nil }
func (terminal) MessageContent() Content     { return nil }
func (terminal) Number() Number              { return 0 }

// Output ends a successful execution and carries its result.
type Output struct {
	terminal
	*Helper
	Result interface{}
}

func (r *Output) Finalize(chan<- *Message) (Session, error) { return r, nil }

// Abort ends a failed execution.
// Culprits lists the parties whose messages were shown to be invalid, it may be empty.
type Abort struct {
	terminal
	*Helper
	Culprits []party.ID
	Err      error
}

func (r *Abort) Finalize(chan<- *Message) (Session, error) { return r, nil }
