package test

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/taurusgroup/mpc-sign/internal/round"
	"github.com/taurusgroup/mpc-sign/pkg/party"
	"github.com/taurusgroup/mpc-sign/pkg/protocol"
	"golang.org/x/sync/errgroup"
)

// Rule describes various hooks that can be applied to a protocol execution.
type Rule interface {
	// ModifyBefore modifies r before r.Finalize() is called.
	ModifyBefore(r round.Session)
	// ModifyAfter modifies rNext, which is the round returned by r.Finalize().
	ModifyAfter(rNext round.Session)
	// ModifyContent modifies content for the message that is delivered in rNext.
	ModifyContent(rNext round.Session, to party.ID, content round.Content)
}

// Rounds finalizes every round, then delivers the produced messages to the next rounds,
// broadcasts first. Every message goes through the same encoding as on the wire.
//
// It returns true once all parties reached an Output or Abort round.
// If a party aborted, the abort's error is returned.
func Rounds(rounds []round.Session, rule Rule) (bool, error) {
	var (
		err      error
		errGroup errgroup.Group
		N        = len(rounds)
		out      = make(chan *round.Message, N*(N+1))
	)

	if _, err = checkAllRoundsSame(rounds); err != nil {
		return false, err
	}

	for id := range rounds {
		idx := id
		r := rounds[idx]
		errGroup.Go(func() error {
			var rNew round.Session
			var err error
			if rule != nil {
				rule.ModifyBefore(r)
				outFake := make(chan *round.Message, N+1)
				rNew, err = r.Finalize(outFake)
				close(outFake)
				if err != nil {
					return err
				}
				rule.ModifyAfter(rNew)
				for msg := range outFake {
					rule.ModifyContent(rNew, msg.To, msg.Content)
					out <- msg
				}
			} else {
				rNew, err = r.Finalize(out)
				if err != nil {
					return err
				}
			}

			if rNew != nil {
				rounds[idx] = rNew
			}
			return nil
		})
	}
	if err = errGroup.Wait(); err != nil {
		return false, err
	}
	close(out)

	for _, r := range rounds {
		if abort, ok := r.(*round.Abort); ok {
			return true, fmt.Errorf("party %s aborted: %w", abort.SelfID(), abort.Err)
		}
	}

	roundType, err := checkAllRoundsSame(rounds)
	if err != nil {
		return false, err
	}
	if roundType == reflect.TypeOf(&round.Output{}) {
		return true, nil
	}

	var broadcasts, directs []*round.Message
	for msg := range out {
		if msg.Broadcast {
			broadcasts = append(broadcasts, msg)
		} else {
			directs = append(directs, msg)
		}
	}

	for _, batch := range [][]*round.Message{broadcasts, directs} {
		for _, msg := range batch {
			data, err := encode(msg)
			if err != nil {
				return false, err
			}
			for _, r := range rounds {
				r := r
				if !msg.IsFor(r.SelfID()) {
					continue
				}
				errGroup.Go(func() error {
					m, err := decode(data, r)
					if err != nil {
						return err
					}
					if m.Broadcast {
						b, ok := r.(round.BroadcastRound)
						if !ok {
							return errors.New("broadcast message but not broadcast round")
						}
						return b.StoreBroadcastMessage(m)
					}
					if err = r.VerifyMessage(m); err != nil {
						return err
					}
					return r.StoreMessage(m)
				})
			}
			// messages to a single round are processed one at a time
			if err = errGroup.Wait(); err != nil {
				return false, err
			}
		}
	}

	return false, nil
}

// encode serializes msg into a CBOR protocol.Message with a JSON content.
func encode(msg *round.Message) ([]byte, error) {
	content, err := json.Marshal(msg.Content)
	if err != nil {
		return nil, err
	}
	envelope := &protocol.Message{
		SSID:        []byte("test"),
		From:        msg.From,
		To:          msg.To,
		Protocol:    "test",
		RoundNumber: msg.Content.RoundNumber(),
		Broadcast:   msg.Broadcast,
		Data:        content,
	}
	return envelope.MarshalBinary()
}

// decode reads a message produced by encode into the content expected by r.
func decode(data []byte, r round.Session) (round.Message, error) {
	var envelope protocol.Message
	if err := envelope.UnmarshalBinary(data); err != nil {
		return round.Message{}, err
	}
	if envelope.RoundNumber != r.Number() {
		return round.Message{}, fmt.Errorf("message for round %d delivered to round %d", envelope.RoundNumber, r.Number())
	}
	var content round.Content
	if envelope.Broadcast {
		b, ok := r.(round.BroadcastRound)
		if !ok {
			return round.Message{}, errors.New("broadcast message but not broadcast round")
		}
		content = b.BroadcastContent()
	} else {
		content = r.MessageContent()
	}
	if content == nil {
		return round.Message{}, round.ErrInvalidContent
	}
	if err := json.Unmarshal(envelope.Data, content); err != nil {
		return round.Message{}, err
	}
	return round.Message{
		From:      envelope.From,
		To:        envelope.To,
		Broadcast: envelope.Broadcast,
		Content:   content,
	}, nil
}

func checkAllRoundsSame(rounds []round.Session) (reflect.Type, error) {
	var t reflect.Type
	for _, r := range rounds {
		t2 := reflect.TypeOf(r)
		if t == nil {
			t = t2
		} else if t != t2 {
			return t, fmt.Errorf("two different rounds: %s %s", t, t2)
		}
	}
	return t, nil
}
