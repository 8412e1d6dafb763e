package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/boopathidas/upskillglobal/core"
	"github.com/boopathidas/upskillglobal/core/course"
	"github.com/boopathidas/upskillglobal/core/student"
	appfs "github.com/boopathidas/upskillglobal/fs"
	"github.com/boopathidas/upskillglobal/storage/database/inmem"
	"github.com/boopathidas/upskillglobal/storage/database/mongodb"
	"github.com/boopathidas/upskillglobal/storage/database/postgres"
)

const migrationsDir = "migrations"

var errUnknownEngine = errors.New("unknown database engine")

// Stores holds the repositories of the configured engine.
type Stores struct {
	Students student.Repository
	Courses  course.Repository

	// SQL is set for the postgres engine only.
	SQL   *sql.DB
	close func(ctx context.Context) error
}

func (s *Stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects to the engine named in conf.Database.Engine and builds its repositories.
func Open(ctx context.Context, conf *core.Config) (*Stores, error) {
	switch conf.Database.Engine {
	case core.EngineMongoDB:
		client, db, err := OpenMongo(ctx, conf)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Students: mongorepos.NewStudentRepository(db, conf.Database.Timeout),
			Courses:  mongorepos.NewCourseRepository(db, conf.Database.Timeout),
			close:    client.Disconnect,
		}, nil
	case core.EnginePostgres:
		db, err := OpenPostgres(conf)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Students: pgrepos.NewStudentRepository(db, conf.Database.Timeout),
			Courses:  pgrepos.NewCourseRepository(db, conf.Database.Timeout),
			SQL:      db.DB,
			close:    func(context.Context) error { return db.Close() },
		}, nil
	case core.EngineMemory:
		db := inmemdb.Open()
		return &Stores{
			Students: inmemdb.NewStudentRepository(db),
			Courses:  inmemdb.NewCourseRepository(db),
		}, nil
	default:
		return nil, errors.Wrapf(errUnknownEngine, "%q", conf.Database.Engine)
	}
}

// OpenMongo connects to MongoDB, pings it and makes sure the unique indexes exist.
func OpenMongo(ctx context.Context, conf *core.Config) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(conf.Database.URI).
		SetAppName(conf.AppName).
		SetTimeout(conf.Database.Timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, errors.Wrap(err, "connecting to mongodb")
	}

	err = ping(func() error {
		pctx, cancel := context.WithTimeout(ctx, conf.Database.Timeout)
		defer cancel()
		return client.Ping(pctx, nil)
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}

	db := client.Database(conf.Database.Name)
	if err = mongorepos.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}
	return client, db, nil
}

// OpenPostgres connects to PostgreSQL, waits for it and applies pending migrations.
func OpenPostgres(conf *core.Config) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", conf.Database.URI)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(db.Ping); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err = Migrate(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(pingFunc func() error) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = pingFunc()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// Migrate applies every pending migration.
func Migrate(db *sql.DB) error {
	return RunMigrations("up", db)
}

// RunMigrations runs a goose command (up, down, status, ...) against the embedded migrations.
func RunMigrations(command string, db *sql.DB, args ...string) error {
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "setting goose dialect")
	}
	if err := goose.Run(command, db, migrationsDir, args...); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}
