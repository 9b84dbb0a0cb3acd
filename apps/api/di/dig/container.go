package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/masomo-records/apps/api/echo"
	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/attendance"
	"github.com/trezcool/masomo-records/core/complaint"
	"github.com/trezcool/masomo-records/core/school"
	"github.com/trezcool/masomo-records/core/subject"
	logsvc "github.com/trezcool/masomo-records/services/logger"
	"github.com/trezcool/masomo-records/storage/database"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type Repositories struct {
	dig.Out
	School     school.Repository
	Attendance attendance.Repository
	Complaint  complaint.Repository
	Subject    subject.Repository
}

type DepsParam struct {
	dig.In
	Validate      *validator.Validate
	Translator    ut.Translator
	AttendanceSvc attendance.Service
	ComplaintSvc  complaint.Service
	SubjectSvc    subject.Service
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newStore(conf *core.Config, loggerParam DBLoggerParam) *database.Store {
	setUp := func() (*database.Store, error) {
		ctx, cancel := context.WithTimeout(context.Background(), conf.Database.Timeout*2)
		defer cancel()

		store, err := database.OpenStore(ctx, conf)
		if err != nil {
			return nil, err
		}
		if err = store.EnsureIndexes(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		return store, nil
	}

	store, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	loggerParam.Logger.Info(fmt.Sprintf("database ready : engine %q", store.Engine))
	return store
}

func newRepositories(store *database.Store) Repositories {
	return Repositories{
		School:     store.Repos.School,
		Attendance: store.Repos.Attendance,
		Complaint:  store.Repos.Complaint,
		Subject:    store.Repos.Subject,
	}
}

func newDeps(p DepsParam) echoapi.Deps {
	return echoapi.Deps{
		Validate:      p.Validate,
		Translator:    p.Translator,
		AttendanceSvc: p.AttendanceSvc,
		ComplaintSvc:  p.ComplaintSvc,
		SubjectSvc:    p.SubjectSvc,
	}
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStore))
	must(c.Provide(newRepositories))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(core.NewValidator))
	must(c.Provide(attendance.NewService))
	must(c.Provide(complaint.NewService))
	must(c.Provide(subject.NewService))
	must(c.Provide(newDeps))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
