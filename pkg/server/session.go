package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/abhisheknishant138/scope/internal/errors"
	"github.com/abhisheknishant138/scope/pkg/appstate"
	"github.com/abhisheknishant138/scope/pkg/history"
	"github.com/abhisheknishant138/scope/pkg/navigation"
	"github.com/abhisheknishant138/scope/pkg/storage"
	"github.com/abhisheknishant138/scope/pkg/urlcodec"
)

// Message types.
const (
	MessageHello    = "hello"
	MessageState    = "state"
	MessageLocation = "location"
	MessageWelcome  = "welcome"
	MessageNavigate = "navigate"
	MessageError    = "error"
)

// ClientMessage is a message sent by the browser.
type ClientMessage struct {
	Type     string          `json:"type"`
	Session  string          `json:"session,omitempty"`
	Location string          `json:"location,omitempty"`
	State    json.RawMessage `json:"state,omitempty"`
}

// WelcomeMessage answers a hello.
type WelcomeMessage struct {
	Type    string          `json:"type"`
	Session string          `json:"session"`
	Restore *appstate.State `json:"restore"`
}

// NavigateMessage tells the browser to push or replace a history entry.
type NavigateMessage struct {
	Type     string `json:"type"`
	Mode     string `json:"mode"`
	Path     string `json:"path"`
	State    any    `json:"state"`
	Dispatch bool   `json:"dispatch"`
}

// ErrorMessage reports a rejected client message.
type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// session is the server-side mirror of one browser tab: its history and the
// router that keeps it in step. It survives reconnects.
type session struct {
	id      string
	history *history.History
	router  *navigation.Router
	logger  *slog.Logger

	mu           sync.Mutex // guards conn, lastActive and writes on conn
	conn         *websocket.Conn
	lastActive   time.Time
	writeTimeout time.Duration
}

func (s *Server) newSession(id string) *session {
	logger := s.logger.With("session_id", id)
	sess := &session{
		id:           id,
		history:      history.New(s.config.HistoryCapacity),
		logger:       logger,
		lastActive:   time.Now(),
		writeTimeout: 10 * time.Second,
	}

	opts := []navigation.Option{
		navigation.WithLogger(logger),
		navigation.WithRecorder(s.config.Recorder),
		navigation.WithTracer(s.config.Tracer),
	}
	if s.config.Store != nil {
		opts = append(opts, navigation.WithStore(storage.Prefixed(s.config.Store, storage.SessionPrefix(id))))
	}
	sess.router = navigation.NewRouter(&wsNavigator{sess: sess}, sess.history, opts...)
	return sess
}

// session returns the session with the given id, creating it when the id is
// unknown or not a UUID.
func (s *Server) session(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := uuid.Parse(id); err == nil {
		if sess, ok := s.sessions[id]; ok {
			return sess, true
		}
	} else {
		id = uuid.NewString()
	}
	sess := s.newSession(id)
	s.sessions[id] = sess
	return sess, false
}

func (sess *session) attach(conn *websocket.Conn) {
	sess.mu.Lock()
	old := sess.conn
	sess.conn = conn
	sess.lastActive = time.Now()
	sess.mu.Unlock()

	if old != nil && old != conn {
		old.Close()
	}
}

func (sess *session) detach(conn *websocket.Conn) {
	sess.mu.Lock()
	if sess.conn == conn {
		sess.conn = nil
	}
	sess.lastActive = time.Now()
	sess.mu.Unlock()
}

func (sess *session) touch() {
	sess.mu.Lock()
	sess.lastActive = time.Now()
	sess.mu.Unlock()
}

func (sess *session) expired(now time.Time, window time.Duration) bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.conn == nil && now.Sub(sess.lastActive) > window
}

// send writes v to the attached connection. Messages to a detached session
// are dropped.
func (sess *session) send(v any) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.conn == nil {
		return nil
	}
	sess.conn.SetWriteDeadline(time.Now().Add(sess.writeTimeout))
	return sess.conn.WriteJSON(v)
}

// wsNavigator applies navigations to the session's history and forwards
// them to the browser.
type wsNavigator struct {
	sess *session
}

func (n *wsNavigator) Show(path string, state any, dispatch bool) error {
	if err := n.sess.history.Show(path, state, dispatch); err != nil {
		return err
	}
	return n.sess.send(NavigateMessage{Type: MessageNavigate, Mode: navigation.ModePush.String(), Path: path, State: state, Dispatch: dispatch})
}

func (n *wsNavigator) Replace(path string, state any, dispatch bool) error {
	if err := n.sess.history.Replace(path, state, dispatch); err != nil {
		return err
	}
	return n.sess.send(NavigateMessage{Type: MessageNavigate, Mode: navigation.ModeReplace.String(), Path: path, State: state, Dispatch: dispatch})
}

// handleWebSocket upgrades the connection, runs the hello handshake and then
// serves state messages until the connection closes.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(s.config.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(s.config.HandshakeTimeout))

	var hello ClientMessage
	if err := conn.ReadJSON(&hello); err != nil || hello.Type != MessageHello {
		s.logger.Warn("handshake failed", "error", err, "type", hello.Type)
		conn.WriteJSON(protocolError("expected a hello message"))
		return
	}

	sess, resumed := s.session(hello.Session)
	sess.attach(conn)
	defer sess.detach(conn)

	s.config.Recorder.SessionOpened()
	defer s.config.Recorder.SessionClosed()

	ctx := r.Context()
	if hello.Location != "" {
		sess.history.Replace(canonicalLocation(hello.Location), nil, false)
	}
	restore, err := sess.router.Restore(ctx, appstate.Initial())
	if err != nil {
		sess.logger.Warn("location does not decode, starting from the initial state",
			"location", hello.Location,
			"error", err)
	}
	sess.logger.Info("session attached", "resumed", resumed)

	if err := sess.send(WelcomeMessage{Type: MessageWelcome, Session: sess.id, Restore: restore}); err != nil {
		sess.logger.Error("sending welcome", "error", err)
		return
	}

	for {
		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				sess.logger.Error("read error", "error", err)
			}
			return
		}
		sess.touch()

		if err := s.handleMessage(ctx, sess, msg); err != nil {
			se := errors.FromError(err, "E160")
			sess.logger.Warn("message rejected", "type", msg.Type, "code", se.Code, "error", err)
			if err := sess.send(ErrorMessage{Type: MessageError, Code: se.Code, Message: se.Error()}); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleMessage(ctx context.Context, sess *session, msg ClientMessage) error {
	switch msg.Type {
	case MessageState:
		if len(msg.State) == 0 {
			return protocolErr("state message without state")
		}
		st := appstate.Initial()
		if err := json.Unmarshal(msg.State, st); err != nil {
			return errors.New("E160").WithDetail("state is not an application state object").Wrap(err)
		}
		_, err := sess.router.OnStateChange(ctx, st)
		return err
	case MessageLocation:
		// The browser moved on its own (popstate); the mirror must follow
		// before the next state is compared against it.
		if msg.Location == "" {
			return protocolErr("location message without location")
		}
		found := sess.history.Sync(canonicalLocation(msg.Location))
		sess.logger.Debug("location synced", "location", msg.Location, "known", found)
		return nil
	default:
		return protocolErr("unknown message type " + `"` + msg.Type + `"`)
	}
}

// canonicalLocation rewrites a browser location (possibly percent-escaped,
// possibly a legacy hash) into the path form the router navigates to, so it
// compares equal to the session's history entries. Locations that do not
// decode are kept as sent.
func canonicalLocation(loc string) string {
	m, err := urlcodec.ParseLocation(loc)
	if err != nil {
		return loc
	}
	encoded, err := urlcodec.Encode(m)
	if err != nil {
		return loc
	}
	return urlcodec.StatePath(encoded)
}

func protocolErr(detail string) *errors.ScopeError {
	return errors.New("E160").WithDetail(detail)
}

func protocolError(detail string) ErrorMessage {
	se := protocolErr(detail)
	return ErrorMessage{Type: MessageError, Code: se.Code, Message: se.Message + ": " + detail}
}
