package postgres

import (
	"context"
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	dberr "github.com/streamforms/submission-exporter/internal/errors"
	"github.com/streamforms/submission-exporter/internal/model"
	"github.com/streamforms/submission-exporter/internal/model/options"
	"github.com/streamforms/submission-exporter/internal/store"
)

type Submission struct {
	storage *Store
}

// submissionQuery is the filtered SELECT every read shares: scoped to one
// form, constrained by criteria, newest first with id as the tie break so
// pagination stays stable between requests.
func submissionQuery(formID int64, criteria model.FilterCriteria) sq.SelectBuilder {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	query := psql.
		Select("id", "form_id", "submitted_at", "data").
		From("streamforms.submission").
		Where(sq.Eq{"form_id": formID})

	return applyCriteria(query, criteria).
		OrderBy("submitted_at DESC", "id DESC")
}

func applyCriteria(query sq.SelectBuilder, criteria model.FilterCriteria) sq.SelectBuilder {
	if criteria.DateFrom != nil {
		query = query.Where(sq.GtOrEq{"submitted_at": *criteria.DateFrom})
	}
	if criteria.DateTo != nil {
		// date_to covers its whole day: anything before the next midnight.
		query = query.Where(sq.Lt{"submitted_at": criteria.DateTo.AddDate(0, 0, 1)})
	}
	for _, p := range criteria.Fields {
		query = query.Where(fieldMatch(p))
	}
	return query
}

// fieldMatch builds the per-field predicate over the jsonb data array:
// the submission matches when any value captured under the field name
// contains the filter text, case-insensitively.
func fieldMatch(p model.FieldPredicate) sq.Sqlizer {
	const match = `EXISTS (
		SELECT 1
		FROM jsonb_array_elements(data) AS field,
		     jsonb_array_elements_text(field -> 'values') AS value
		WHERE field ->> 'name' = ? AND value ILIKE ?
	)`
	return sq.Expr(match, p.Name, "%"+escapeLike(p.Value)+"%")
}

// escapeLike neutralizes LIKE metacharacters in admin input so a filter for
// "100%" matches the literal text.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (m *Submission) Search(opts *options.SearchOptions, criteria model.FilterCriteria) ([]*model.Submission, error) {
	db, err := m.storage.Database()
	if err != nil {
		return nil, dberr.NewDBInternalError("search_submissions", err)
	}

	query := submissionQuery(opts.FormID, criteria).
		Offset(opts.Offset()).
		Limit(uint64(opts.Size))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, dberr.NewDBInternalError("search_submissions", err)
	}

	return fetch(opts, db, sqlStr, args, "search_submissions")
}

func (m *Submission) SearchAll(opts *options.ExportOptions, criteria model.FilterCriteria) ([]*model.Submission, error) {
	db, err := m.storage.Database()
	if err != nil {
		return nil, dberr.NewDBInternalError("export_submissions", err)
	}

	sqlStr, args, err := submissionQuery(opts.FormID, criteria).ToSql()
	if err != nil {
		return nil, dberr.NewDBInternalError("export_submissions", err)
	}

	return fetch(opts, db, sqlStr, args, "export_submissions")
}

func fetch(ctx context.Context, db *pgxpool.Pool, sqlStr string, args []any, op string) ([]*model.Submission, error) {
	rows, err := db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, dberr.NewDBInternalError(op, err)
	}
	defer rows.Close()

	var subs []*model.Submission
	for rows.Next() {
		var sub model.Submission
		err := rows.Scan(
			&sub.ID,
			&sub.FormID,
			&sub.SubmittedAt,
			&sub.Values,
		)
		if err != nil {
			return nil, dberr.NewDBInternalError(op, err)
		}
		subs = append(subs, &sub)
	}
	if err = rows.Err(); err != nil {
		return nil, dberr.NewDBInternalError(op, err)
	}

	return subs, nil
}

func (m *Submission) Count(opts *options.SearchOptions, criteria model.FilterCriteria) (int64, error) {
	db, err := m.storage.Database()
	if err != nil {
		return 0, dberr.NewDBInternalError("count_submissions", err)
	}

	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query := applyCriteria(
		psql.Select("count(*)").
			From("streamforms.submission").
			Where(sq.Eq{"form_id": opts.FormID}),
		criteria,
	)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, dberr.NewDBInternalError("count_submissions", err)
	}

	var total int64
	if err := db.QueryRow(opts, sqlStr, args...).Scan(&total); err != nil {
		return 0, dberr.NewDBInternalError("count_submissions", err)
	}

	return total, nil
}

// Delete removes the selected submissions in one statement. Scoping by
// form_id keeps ids of other forms inert, and ids already gone just lower
// the affected count, so overlapping deletes stay safe.
func (m *Submission) Delete(opts *options.DeleteOptions) (int64, error) {
	db, err := m.storage.Database()
	if err != nil {
		return 0, dberr.NewDBInternalError("delete_submissions", err)
	}
	if len(opts.IDs) == 0 {
		return 0, nil
	}

	query := `
		DELETE FROM streamforms.submission
		WHERE form_id = $1
		  AND id = ANY($2)
	`

	cmd, err := db.Exec(opts, query, opts.FormID, opts.IDs)
	if err != nil {
		return 0, dberr.NewDBInternalError("delete_submissions", err)
	}

	return cmd.RowsAffected(), nil
}

func (m *Submission) Insert(ctx context.Context, input *model.NewSubmission) (int64, error) {
	db, err := m.storage.Database()
	if err != nil {
		return 0, dberr.NewDBInternalError("insert_submission", err)
	}

	query := `
		INSERT INTO streamforms.submission (form_id, submitted_at, data)
		VALUES ($1, coalesce($2, now()), $3)
		RETURNING id
	`

	var submittedAt any
	if !input.SubmittedAt.IsZero() {
		submittedAt = input.SubmittedAt
	}

	var id int64
	err = db.QueryRow(ctx, query, input.FormID, submittedAt, input.Values).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505": // unique_violation
				return 0, &dberr.DBUniqueViolationError{
					DBError: *dberr.NewDBError("insert_submission", pgErr.Message),
					Column:  pgErr.ConstraintName,
				}
			case "23503": // foreign_key_violation
				return 0, &dberr.DBForeignKeyViolationError{
					DBError:         *dberr.NewDBError("insert_submission", pgErr.Message),
					ForeignKeyTable: pgErr.TableName,
				}
			default:
				return 0, dberr.NewDBInternalError("insert_submission", err)
			}
		}
		return 0, dberr.NewDBInternalError("insert_submission", err)
	}

	return id, nil
}

func NewSubmissionStore(store *Store) (store.SubmissionStore, error) {
	if store == nil {
		return nil, dberr.NewDBInternalError("new_submission_store", errors.New("store is nil"))
	}
	return &Submission{storage: store}, nil
}
