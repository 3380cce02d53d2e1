package httpapi

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/tetrlabs/professor-server/api"
)

//rowDriver serves canned rows keyed by the table in the query, so handlers
//that read a *sql.Tx from the request context can run against fixed data
type rowDriver struct {
	message      []driver.Value //conversation_id, role, content, sources, created_at
	conversation []driver.Value //user_id, title, class_id, mode, pinned, archived, created_at, updated_at
	inserts      int
}

var feedbackTestDriver = new(rowDriver)

func init() {
	sql.Register("feedbacktest", feedbackTestDriver)
}

func (d *rowDriver) Open(name string) (driver.Conn, error) {
	return &rowConn{data: d}, nil
}

type rowConn struct {
	data *rowDriver
}

func (c *rowConn) Prepare(query string) (driver.Stmt, error) {
	return &rowStmt{data: c.data, query: query}, nil
}

func (c *rowConn) Close() error              { return nil }
func (c *rowConn) Begin() (driver.Tx, error) { return rowTx{}, nil }

type rowTx struct{}

func (rowTx) Commit() error   { return nil }
func (rowTx) Rollback() error { return nil }

type rowStmt struct {
	data  *rowDriver
	query string
}

func (s *rowStmt) Close() error  { return nil }
func (s *rowStmt) NumInput() int { return -1 }

func (s *rowStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.data.inserts++
	return driver.RowsAffected(1), nil
}

func (s *rowStmt) Query(args []driver.Value) (driver.Rows, error) {
	switch {
	case strings.Contains(s.query, "FROM message"):
		return &rowRows{
			cols: []string{"conversation_id", "role", "content", "sources", "created_at"},
			rows: [][]driver.Value{s.data.message},
		}, nil
	case strings.Contains(s.query, "FROM conversation"):
		return &rowRows{
			cols: []string{"user_id", "title", "class_id", "mode", "pinned", "archived", "created_at", "updated_at"},
			rows: [][]driver.Value{s.data.conversation},
		}, nil
	case strings.Contains(s.query, "FROM feedback"):
		return &rowRows{cols: []string{"id", "user_id", "rating", "comment", "created_at"}}, nil
	}
	return &rowRows{}, nil
}

type rowRows struct {
	cols []string
	rows [][]driver.Value
	next int
}

func (r *rowRows) Columns() []string { return r.cols }
func (r *rowRows) Close() error      { return nil }

func (r *rowRows) Next(dest []driver.Value) error {
	if r.next >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.next])
	r.next++
	return nil
}

//feedbackTestRequest builds a request for message 9 with a live transaction
//and the given user in the context
func feedbackTestRequest(t *testing.T, method, body string, userID int64) *http.Request {
	db, err := sql.Open("feedbacktest", "")
	if err != nil {
		t.Fatalf("Could not open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Could not begin transaction: %v", err)
	}

	req := httptest.NewRequest(method, "/messages/9/feedback/", strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"id": "9"})

	ctx := context.WithValue(req.Context(), api.TransactionKey, tx)
	ctx = context.WithValue(ctx, api.UserKey, &api.User{ID: userID, Email: "test@example.com", Name: "Test User"})
	return req.WithContext(ctx)
}

func setFeedbackTestRows(conversationOwner int64) {
	now := time.Now()
	feedbackTestDriver.message = []driver.Value{int64(5), "assistant", "The midterm covered chapters 1 through 4.", []byte(nil), now}
	feedbackTestDriver.conversation = []driver.Value{conversationOwner, "Midterm review", "BIO-101", "balanced", false, false, now, now}
	feedbackTestDriver.inserts = 0
}

//a message in another user's conversation must read as not found, and no
//feedback row may be written
func TestCreateFeedbackOtherUsersConversation(t *testing.T) {
	setFeedbackTestRows(2)

	req := feedbackTestRequest(t, http.MethodPost, `{"rating":1,"comment":"wrong"}`, 1)
	resp := handleCreateFeedback(httptest.NewRecorder(), req)

	if resp.Code != http.StatusNotFound {
		t.Errorf("Code = %d; want %d", resp.Code, http.StatusNotFound)
	}
	if feedbackTestDriver.inserts != 0 {
		t.Errorf("inserts = %d; want 0", feedbackTestDriver.inserts)
	}
}

func TestReadFeedbackOtherUsersConversation(t *testing.T) {
	setFeedbackTestRows(2)

	req := feedbackTestRequest(t, http.MethodGet, "", 1)
	resp := handleReadFeedback(httptest.NewRecorder(), req)

	if resp.Code != http.StatusNotFound {
		t.Errorf("Code = %d; want %d", resp.Code, http.StatusNotFound)
	}
}

func TestReadFeedbackOwner(t *testing.T) {
	setFeedbackTestRows(1)

	req := feedbackTestRequest(t, http.MethodGet, "", 1)
	resp := handleReadFeedback(httptest.NewRecorder(), req)

	if resp.Code != http.StatusOK {
		t.Errorf("Code = %d; want %d", resp.Code, http.StatusOK)
	}
}
