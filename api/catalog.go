package api

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
)

//Cohort is an admission cohort (e.g. "2028", "2029")
type Cohort string

// Scan implements the Scanner interface.
func (c *Cohort) Scan(value interface{}) error {
	b := value.([]byte)
	*c = Cohort(b)
	return nil
}

// Value implements the driver Valuer interface.
func (c Cohort) Value() (driver.Value, error) {
	return string(c), nil
}

//Course represents a selectable course in the catalog
type Course struct {
	ID        int64  `json:"id"`
	ClassID   string `json:"class_id"` //stable key used by the chat backend
	Name      string `json:"name"`
	Professor string `json:"professor"`
	Cohort    Cohort `json:"cohort"`
}

//ReadCohorts returns all Cohorts, or an error if one occurred
func ReadCohorts(ctx context.Context) ([]Cohort, error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	var cohorts []Cohort

	rows, err := tx.Query("SELECT cohort FROM cohort ORDER BY cohort;")
	if err != nil {
		return nil, &Error{Description: "Could not query Cohorts", Type: ErrorTypeServer, Err: err}
	}

	for rows.Next() {
		var c Cohort
		err = rows.Scan(&c)
		if err != nil {
			return nil, &Error{Description: "Could not scan Cohort row", Type: ErrorTypeServer, Err: err}
		}

		cohorts = append(cohorts, c)
	}

	err = rows.Err()
	if err != nil {
		return nil, &Error{Description: "Could not scan Cohort rows", Type: ErrorTypeServer, Err: err}
	}

	return cohorts, nil
}

//ReadCourses returns all Courses for the given cohort (or all cohorts if empty), or an error if one occurred
func ReadCourses(ctx context.Context, cohort string) ([]*Course, error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	query := "SELECT id, class_id, name, professor, cohort FROM course"
	var parameters []interface{}

	if cohort != "" {
		query += " WHERE cohort=?"
		parameters = append(parameters, cohort)
	}

	rows, err := tx.Query(query+" ORDER BY name;", parameters...)
	if err != nil {
		return nil, &Error{Description: "Could not query Courses", Type: ErrorTypeServer, Err: err}
	}
	defer rows.Close()

	var courses []*Course

	for rows.Next() {
		c := new(Course)
		sErr := rows.Scan(&(c.ID), &(c.ClassID), &(c.Name), &(c.Professor), &(c.Cohort))
		if sErr != nil {
			return nil, &Error{Description: "Could not scan Course row", Type: ErrorTypeServer, Err: sErr}
		}

		courses = append(courses, c)
	}

	err = rows.Err()
	if err != nil {
		return nil, &Error{Description: "Could not scan Course rows", Type: ErrorTypeServer, Err: err}
	}

	return courses, nil
}

//ReadCourseByClassID returns the Course with the given class id, or an error if one occurred
func ReadCourseByClassID(ctx context.Context, classID string) (*Course, error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	c := &Course{ClassID: classID}

	row := tx.QueryRow("SELECT id, name, professor, cohort FROM course WHERE class_id=?", classID)
	err := row.Scan(&(c.ID), &(c.Name), &(c.Professor), &(c.Cohort))

	switch {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, &Error{Description: fmt.Sprintf("Could not query Course(%s)", classID), Type: ErrorTypeServer, Err: err}
	}

	return c, nil
}
