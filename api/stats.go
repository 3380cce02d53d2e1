package api

import (
	"context"
	"database/sql"
)

//StatsClass represents per-class usage
type StatsClass struct {
	ClassID string `json:"class_id"`
	Count   int    `json:"count"`
}

//StatsMode represents per-mode usage
type StatsMode struct {
	Mode  string `json:"mode"`
	Count int    `json:"count"`
}

//Stats represents usage statistics (top 10, etc)
type Stats struct {
	ConversationCount int           `json:"conversation_count"`
	MessageCount      int           `json:"message_count"`
	PromptCount       int           `json:"prompt_count"`
	Classes           []*StatsClass `json:"classes"`
	Modes             []*StatsMode  `json:"modes"`
}

//IncrementPromptCount bumps the prompt counter for the given class, or returns an error if one occurred
func IncrementPromptCount(ctx context.Context, classID string) error {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	_, err := tx.Exec("INSERT INTO prompt_count(class_id, count) VALUES(?, 1) ON DUPLICATE KEY UPDATE count=count+1;", classID)
	if err != nil {
		return &Error{Description: "Could not increment prompt count", Type: ErrorTypeServer, Err: err}
	}

	return nil
}

//ReadStats returns Stats, or an error if one occurred.
func ReadStats(ctx context.Context) (*Stats, error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	s := new(Stats)

	//ConversationCount
	row := tx.QueryRow("SELECT COUNT(id) FROM conversation;")
	err := row.Scan(&(s.ConversationCount))
	if err != nil {
		return nil, &Error{Description: "Could not query Stats.ConversationCount", Type: ErrorTypeServer, Err: err}
	}

	//MessageCount
	row = tx.QueryRow("SELECT COUNT(id) FROM message;")
	err = row.Scan(&(s.MessageCount))
	if err != nil {
		return nil, &Error{Description: "Could not query Stats.MessageCount", Type: ErrorTypeServer, Err: err}
	}

	//PromptCount
	row = tx.QueryRow("SELECT COALESCE(SUM(count), 0) FROM prompt_count;")
	err = row.Scan(&(s.PromptCount))
	if err != nil {
		return nil, &Error{Description: "Could not query Stats.PromptCount", Type: ErrorTypeServer, Err: err}
	}

	//Classes
	rows, err := tx.Query("SELECT class_id, count FROM prompt_count ORDER BY count DESC LIMIT 10;")
	if err != nil {
		return nil, &Error{Description: "Could not query Stats.Classes", Type: ErrorTypeServer, Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		c := new(StatsClass)

		sErr := rows.Scan(&(c.ClassID), &(c.Count))
		if sErr != nil {
			return nil, &Error{Description: "Could not scan Stats.Classes row", Type: ErrorTypeServer, Err: sErr}
		}

		s.Classes = append(s.Classes, c)
	}

	err = rows.Err()
	if err != nil {
		return nil, &Error{Description: "Could not scan Stats.Classes rows", Type: ErrorTypeServer, Err: err}
	}

	//Modes
	rows, err = tx.Query("SELECT mode, COUNT(id) as c FROM conversation GROUP BY mode ORDER BY c DESC LIMIT 10;")
	if err != nil {
		return nil, &Error{Description: "Could not query Stats.Modes", Type: ErrorTypeServer, Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		m := new(StatsMode)

		sErr := rows.Scan(&(m.Mode), &(m.Count))
		if sErr != nil {
			return nil, &Error{Description: "Could not scan Stats.Modes row", Type: ErrorTypeServer, Err: sErr}
		}

		s.Modes = append(s.Modes, m)
	}

	err = rows.Err()
	if err != nil {
		return nil, &Error{Description: "Could not scan Stats.Modes rows", Type: ErrorTypeServer, Err: err}
	}

	return s, nil
}
