package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// hashBatchSize bounds the number of placeholders in a single IN query so that
// large imports never exceed sqlite's bound-parameter limit.
const hashBatchSize = 100

// PhotoRef is the minimal projection used by the dedup classification phase.
type PhotoRef struct {
	ID       uint
	FileHash string
	Filepath string
}

// FindExistingHashes checks which of the given content hashes are already
// present in the catalog. The lookup is chunked into fixed-size batches; the
// result maps each known hash to its record's id and stored path.
func FindExistingHashes(db *sql.DB, hashes []string) (map[string]PhotoRef, error) {
	existing := make(map[string]PhotoRef)
	if len(hashes) == 0 {
		return existing, nil
	}

	for start := 0; start < len(hashes); start += hashBatchSize {
		end := start + hashBatchSize
		if end > len(hashes) {
			end = len(hashes)
		}
		batch := hashes[start:end]

		queryBuilder := psql.Select("id", "file_hash", "filepath").
			From("photos").
			Where(sq.Eq{"file_hash": batch})

		sqlStr, args, err := queryBuilder.ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build SQL query for FindExistingHashes: %w", err)
		}

		rows, err := db.Query(sqlStr, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to query existing hashes: %w", err)
		}

		for rows.Next() {
			var ref PhotoRef
			if err := rows.Scan(&ref.ID, &ref.FileHash, &ref.Filepath); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan existing hash row: %w", err)
			}
			existing[ref.FileHash] = ref
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to iterate existing hash rows: %w", err)
		}
		rows.Close()
	}

	return existing, nil
}

// GetPhotoIDsByHashes resolves content hashes to record ids, chunked the same
// way as FindExistingHashes. Unknown hashes are silently absent from the result.
func GetPhotoIDsByHashes(db *sql.DB, hashes []string) ([]uint, error) {
	if len(hashes) == 0 {
		return nil, nil
	}

	var ids []uint
	for start := 0; start < len(hashes); start += hashBatchSize {
		end := start + hashBatchSize
		if end > len(hashes) {
			end = len(hashes)
		}
		batch := hashes[start:end]

		queryBuilder := psql.Select("id").
			From("photos").
			Where(sq.Eq{"file_hash": batch})

		sqlStr, args, err := queryBuilder.ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build SQL query for GetPhotoIDsByHashes: %w", err)
		}

		rows, err := db.Query(sqlStr, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to query photo ids by hashes: %w", err)
		}

		for rows.Next() {
			var id uint
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan photo id row: %w", err)
			}
			ids = append(ids, id)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to iterate photo id rows: %w", err)
		}
		rows.Close()
	}

	return ids, nil
}
