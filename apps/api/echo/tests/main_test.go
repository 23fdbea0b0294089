package tests

import (
	"net/mail"
	"os"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/compliedu/backend/apps/api/echo"
	"github.com/compliedu/backend/core"
	"github.com/compliedu/backend/core/institution"
	"github.com/compliedu/backend/core/sar"
	"github.com/compliedu/backend/core/user"
	emailsvc "github.com/compliedu/backend/services/email"
	"github.com/compliedu/backend/storage/kv/inmem"
	"github.com/compliedu/backend/storage/kvrepos"
)

var (
	conf       *core.Config
	logger     core.Logger
	validate   *validator.Validate
	translator ut.Translator

	db       *kvrepos.DB
	usrRepo  user.Repository
	instRepo institution.Repository
	sarRepo  sar.Repository

	usrSvc  *user.Service
	instSvc *institution.Service
	sarSvc  *sar.Service
)

func TestMain(m *testing.M) {
	conf = &core.Config{
		AppName:          "CompliEdu",
		Env:              "TEST",
		TestMode:         true,
		SecretKey:        []byte("secret sauce"),
		WorkDir:          core.Getwd(),
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Name: "CompliEdu", Address: "noreply@compliedu.com"},

		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		ApplicationWindow:         90 * 24 * time.Hour,

		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 24 * time.Hour,
		},
	}
	logger = nopLogger{}

	validate = validator.New()
	translator = newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)
	user.LoadCommonPasswords(conf, logger)

	os.Exit(m.Run())
}

// setup spins up a server over a fresh in-memory store. The kv repositories
// seed the default dataset on first access.
func setup(t *testing.T) *echoapi.Server {
	t.Helper()

	db = kvrepos.NewDB(inmem.NewStore(), logger)
	usrRepo = kvrepos.NewUserRepository(db)
	instRepo = kvrepos.NewInstitutionRepository(db)
	sarRepo = kvrepos.NewSARRepository(db)

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc = user.NewService(usrRepo, mailSvc, conf)
	instSvc = institution.NewService(instRepo, mailSvc)
	sarSvc = sar.NewService(sarRepo, instRepo, mailSvc, conf)

	return echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:           conf,
			Logger:         logger,
			UserSvc:        usrSvc,
			InstitutionSvc: instSvc,
			SARSvc:         sarSvc,
			Validate:       validate,
			Translator:     translator,
			DisableReqLogs: true,
		},
	)
}

func newTranslator() ut.Translator {
	lang := en.New()
	uni := ut.New(lang, lang)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}
