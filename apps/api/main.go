package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/compliedu/backend/apps/api/echo"
	"github.com/compliedu/backend/core"
	"github.com/compliedu/backend/core/institution"
	"github.com/compliedu/backend/core/sar"
	"github.com/compliedu/backend/core/user"
	emailsvc "github.com/compliedu/backend/services/email"
	logsvc "github.com/compliedu/backend/services/logger"
	"github.com/compliedu/backend/storage/kv/file"
	"github.com/compliedu/backend/storage/kv/inmem"
	"github.com/compliedu/backend/storage/kv/postgres"
	"github.com/compliedu/backend/storage/kvrepos"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up storage
	store, err := setUpStore(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	db := kvrepos.NewDB(store, logger)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	instRepo := kvrepos.NewInstitutionRepository(db)
	usrSvc := user.NewService(kvrepos.NewUserRepository(db), mailSvc, conf)
	instSvc := institution.NewService(instRepo, mailSvc)
	sarSvc := sar.NewService(kvrepos.NewSARRepository(db), instRepo, mailSvc, conf)

	sarSvc.OnChange(func(app sar.Application) {
		logger.Debug(fmt.Sprintf("application %s changed: %s (%d%%)", app.ApplicationID, app.Status, app.CompletionPercentage))
	})

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	user.LoadCommonPasswords(conf, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:           conf,
			Logger:         logger,
			UserSvc:        usrSvc,
			InstitutionSvc: instSvc,
			SARSvc:         sarSvc,
			Validate:       validate,
			Translator:     translator,
		},
	)
	server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpStore(conf *core.Config) (core.KeyValueStore, error) {
	switch conf.Storage.Backend {
	case "postgres":
		if err := postgres.CreateIfNotExist(conf); err != nil {
			return nil, err
		}
		return postgres.NewStore(conf)
	case "inmem":
		return inmem.NewStore(), nil
	default:
		return file.NewStore(conf.Storage.FileDir)
	}
}

func newTranslator() ut.Translator {
	lang := en.New()
	uni := ut.New(lang, lang)
	translator, _ := uni.GetTranslator("en")
	return translator
}
