// Package reference maintains the doctors lookup table joined by the
// reports. Seeding never overwrites an existing doctor.
package reference

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"healthetl/internal/etlerr"
	"healthetl/internal/schema"
	sqlitestore "healthetl/internal/storage/sqlite"
)

// DefaultDoctors are seeded when no doctors file is given.
var DefaultDoctors = []schema.Doctor{
	{DoctorName: "Dr. John Smith", Specialty: "Cardiology"},
	{DoctorName: "Dr. Emily Johnson", Specialty: "Neurology"},
	{DoctorName: "Dr. Michael Brown", Specialty: "Oncology"},
	{DoctorName: "Dr. Sarah Davis", Specialty: "Pediatrics"},
	{DoctorName: "Dr. Unknown", Specialty: "General Practice"},
}

// logWriter routes gorm's logger through zerolog.
type logWriter struct{ log zerolog.Logger }

func (w logWriter) Printf(format string, args ...any) {
	w.log.Debug().Msgf(format, args...)
}

// Open connects gorm to an existing store. SQLite files must already exist
// (the ETL creates them); a missing one fails with etlerr.ErrNotFound.
func Open(ctx context.Context, kind, dsn string, log zerolog.Logger) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.New(logWriter{log: log}, logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}

	var (
		dialector gorm.Dialector
		conn      *sql.DB
	)
	switch kind {
	case "sqlite":
		path := sqlitestore.FilePath(dsn)
		if path != "" {
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				return nil, etlerr.NotFound("database", path)
			}
		}
		var err error
		conn, err = sql.Open(sqlitestore.DriverName, dsn)
		if err != nil {
			return nil, etlerr.Store("open sqlite", err)
		}
		dialector = gormsqlite.New(gormsqlite.Config{Conn: conn})
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("doctors table: unsupported storage kind %q", kind)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, etlerr.Store("open "+kind, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, etlerr.Store("open "+kind, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, etlerr.Store("ping "+kind, err)
	}
	return db, nil
}

// Close releases the pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Seed creates the doctors table if needed and inserts doctors, skipping
// names already present. It returns the number of rows inserted.
func Seed(ctx context.Context, db *gorm.DB, doctors []schema.Doctor) (int64, error) {
	if err := db.WithContext(ctx).AutoMigrate(&schema.Doctor{}); err != nil {
		return 0, etlerr.Store("migrate doctors", err)
	}
	if len(doctors) == 0 {
		return 0, nil
	}
	rows := slices.Clone(doctors)
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows)
	if res.Error != nil {
		return 0, etlerr.Store("insert doctors", res.Error)
	}
	return res.RowsAffected, nil
}

// List returns every doctor ordered by name.
func List(ctx context.Context, db *gorm.DB) ([]schema.Doctor, error) {
	var out []schema.Doctor
	if err := db.WithContext(ctx).Order("doctor_name").Find(&out).Error; err != nil {
		return nil, etlerr.Store("list doctors", err)
	}
	return out, nil
}

// LoadFile reads doctors from a CSV with doctor_name and specialty columns.
func LoadFile(path string) ([]schema.Doctor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, etlerr.NotFound("doctors file", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var doctors []schema.Doctor
	if err := csvutil.Unmarshal(data, &doctors); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	for i := range doctors {
		d := &doctors[i]
		d.DoctorName = strings.TrimSpace(d.DoctorName)
		d.Specialty = strings.TrimSpace(d.Specialty)
		if d.DoctorName == "" || d.Specialty == "" {
			return nil, fmt.Errorf("%s row %d: doctor_name and specialty are required", path, i+2)
		}
	}
	return doctors, nil
}

// Render prints doctors as a table.
func Render(w io.Writer, doctors []schema.Doctor) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"doctor_name", "specialty"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, d := range doctors {
		table.Append([]string{d.DoctorName, d.Specialty})
	}
	table.Render()
}
