package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/tetrlabs/professor-server/api"
)

type handlerResponse struct {
	Code int
	Body interface{}
	User *api.User
	Err  error
}

type returnHandler func(http.ResponseWriter, *http.Request) *handlerResponse

const logTemplate = "{{.Date}} {{.Method}} {{.Path}}{{if .Query}}?{{.Query}}{{end}} {{.Code}} ({{.Status}}) {{if .User}}, User: {{.User.ID}}:{{.User.Email}}{{end}}{{if .Err}}, Error: {{.Err}}{{end}}\n"

type logData struct {
	Date   string
	User   *api.User
	Status string
	Code   int
	Method string
	Path   string
	Query  string
	Err    error
}

func logMiddleware(next returnHandler, writer io.Writer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := next(w, r)

		err := template.Must(template.New("log").Parse(logTemplate)).Execute(writer, &logData{
			Date:   time.Now().Format("2006-01-02:15:04:05 -0700"),
			User:   resp.User,
			Status: http.StatusText(resp.Code),
			Code:   resp.Code,
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Err:    resp.Err,
		})

		if err != nil {
			panic(err)
		}
	})
}

func jsonMiddleware(next returnHandler) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		var resp *handlerResponse

		if r.Method != "GET" && r.Method != "DELETE" {
			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil {
				resp = handleError(http.StatusBadRequest, errors.New("Could not parse Content-Type"))
				goto serve
			}
			if mediaType != "application/json" {
				resp = handleError(http.StatusBadRequest, errors.New("Content-Type not application/json"))
				goto serve
			}
		}

		w.Header().Set("Content-Type", "application/json")
		resp = next(w, r)

	serve:
		w.WriteHeader(resp.Code)
		e := json.NewEncoder(w)
		err := e.Encode(resp.Body)
		if err != nil {
			return handleError(http.StatusInternalServerError, fmt.Errorf("Could encode json: %v", err))
		}
		return resp
	}
}

func authMiddleware(next returnHandler, s SessionStore) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		key := r.Header.Get("X-Session-Key")
		if key == "" {
			return handleError(http.StatusUnauthorized, errors.New("X-Session-Key header empty"))
		}

		sess, err := s.Check(key)
		if err != nil {
			return handleError(http.StatusInternalServerError, fmt.Errorf("Could not check session key: %v", err))
		}
		if sess == nil {
			return handleError(http.StatusUnauthorized, errors.New("Could not find session"))
		}

		user, err := api.ReadUser(r.Context(), sess.UserID)
		if resp := checkAPIError(err); resp != nil {
			return resp
		}

		ctx := context.WithValue(r.Context(), api.UserKey, user)
		resp := next(w, r.WithContext(ctx))
		resp.User = user

		return resp
	}
}

func txMiddleware(next returnHandler, db *sql.DB) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		tx, err := db.Begin()
		if err != nil {
			return handleError(http.StatusInternalServerError, fmt.Errorf("Could not begin transaction: %v", err))
		}

		ctx := context.WithValue(r.Context(), api.TransactionKey, tx)
		resp := next(w, r.WithContext(ctx))

		if resp.Err != nil {
			if rErr := tx.Rollback(); rErr != nil && rErr != sql.ErrTxDone {
				return handleError(http.StatusInternalServerError, fmt.Errorf("Could not rollback transaction: %v", rErr))
			}
			return resp
		}

		if err = tx.Commit(); err != nil {
			if rErr := tx.Rollback(); rErr != nil && rErr != sql.ErrTxDone {
				return handleError(http.StatusInternalServerError, fmt.Errorf("Could not rollback transaction: %v", rErr))
			}
			return handleError(http.StatusInternalServerError, fmt.Errorf("Could not commit transaction: %v", err))
		}

		return resp
	}
}

//wsAuthMiddleware authenticates a WebSocket upgrade request and puts the User
//on the request context. The session key comes from the X-Session-Key header,
//or the session_key query parameter since browsers cannot set headers on
//WebSocket connections. The wrapped handler manages its own transactions.
func wsAuthMiddleware(next http.Handler, s SessionStore, db *sql.DB, writer io.Writer) http.Handler {
	logLine := func(r *http.Request, code int, user *api.User, err error) {
		template.Must(template.New("log").Parse(logTemplate)).Execute(writer, &logData{
			Date:   time.Now().Format("2006-01-02:15:04:05 -0700"),
			User:   user,
			Status: http.StatusText(code),
			Code:   code,
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Err:    err,
		})
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Session-Key")
		if key == "" {
			key = r.URL.Query().Get("session_key")
		}
		if key == "" {
			logLine(r, http.StatusUnauthorized, nil, errors.New("session key empty"))
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		sess, err := s.Check(key)
		if err != nil {
			logLine(r, http.StatusInternalServerError, nil, fmt.Errorf("Could not check session key: %v", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if sess == nil {
			logLine(r, http.StatusUnauthorized, nil, errors.New("Could not find session"))
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		user, err := readUserDirect(r.Context(), db, sess.UserID)
		if err != nil {
			logLine(r, http.StatusInternalServerError, nil, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if user == nil {
			logLine(r, http.StatusUnauthorized, nil, errors.New("Could not find user for session"))
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		logLine(r, http.StatusSwitchingProtocols, user, nil)

		ctx := context.WithValue(r.Context(), api.UserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

//readUserDirect loads a User in its own short transaction
func readUserDirect(ctx context.Context, db *sql.DB, id int64) (*api.User, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("Could not begin transaction: %v", err)
	}

	ctx = context.WithValue(ctx, api.TransactionKey, tx)
	user, err := api.ReadUser(ctx, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Could not commit transaction: %v", err)
	}
	return user, nil
}
