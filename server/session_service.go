package server

import (
	"context"
	"fmt"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/chazu/madeup/vm/dist"
)

// SessionService implements madeup.v1.SessionService, a REPL over the
// wire.
type SessionService struct {
	worker   *RunWorker
	sessions *SessionStore
}

// NewSessionService creates a SessionService.
func NewSessionService(worker *RunWorker, sessions *SessionStore) *SessionService {
	return &SessionService{
		worker:   worker,
		sessions: sessions,
	}
}

// CreateSession creates a new session.
func (s *SessionService) CreateSession(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	name, _, err := stringField(req.Msg, "name")
	if err != nil {
		return nil, err
	}
	session := s.sessions.Create(name)
	return response(map[string]interface{}{"sessionId": session.ID})
}

// DestroySession destroys a session.
func (s *SessionService) DestroySession(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	id, err := requiredString(req.Msg, "sessionId")
	if err != nil {
		return nil, err
	}
	if _, ok := s.sessions.Get(id); !ok {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("session %q not found", id))
	}
	s.sessions.Destroy(id)
	return response(map[string]interface{}{})
}

// Eval evaluates a chunk in a session. The response carries the chunk's
// value, the log lines it produced, the names the session now binds and a
// report of the scene so far.
func (s *SessionService) Eval(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	id, err := requiredString(req.Msg, "sessionId")
	if err != nil {
		return nil, err
	}
	source, err := requiredString(req.Msg, "source")
	if err != nil {
		return nil, err
	}
	session, ok := s.sessions.Get(id)
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("session %q not found", id))
	}

	result, err := s.worker.Do(ctx, func() interface{} {
		return s.eval(session, source)
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeUnavailable, err)
	}
	return response(result.(map[string]interface{}))
}

// eval must be called on the worker goroutine.
func (s *SessionService) eval(session *Session, source string) map[string]interface{} {
	value, evalErr := session.session.Eval(source)
	result := session.session.Result()

	fields := reportFields(dist.NewReport(result, evalErr))
	fields["value"] = ""
	if value != nil {
		fields["value"] = value.String()
	}
	fields["log"] = stringList(session.unseenLog(result.Log))
	fields["variables"] = stringList(session.session.Variables())
	fields["functions"] = stringList(session.session.Functions())
	return fields
}

func stringList(items []string) []interface{} {
	out := make([]interface{}, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}
