package messages

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMissingType = errors.New("envelope without message type")
	ErrUnknownType = errors.New("unknown message type")
)

// Registro fechado discriminador -> variante. Tipos fora daqui são erro
// duro de decodificação, nunca fallback.
var registry = map[string]func() Payload{
	TypeDebitRequest:  func() Payload { return &DebitRequest{} },
	TypeDebitResponse: func() Payload { return &DebitResponse{} },
}

// Encode serializa o payload dentro de um envelope versionado.
func Encode(p Payload) ([]byte, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	env := Envelope{
		Version: Version,
		Type:    p.MessageType(),
		Payload: raw,
	}
	b, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return b, nil
}

// Decode abre o envelope e materializa a variante indicada pelo
// discriminador. Discriminador ausente ou não registrado falha a
// desserialização inteira.
func Decode(b []byte) (Envelope, Payload, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Type == "" {
		return env, nil, ErrMissingType
	}
	newPayload, ok := registry[env.Type]
	if !ok {
		return env, nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	p := newPayload()
	if err := json.Unmarshal(env.Payload, p); err != nil {
		return env, nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
	}
	return env, p, nil
}
