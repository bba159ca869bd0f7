package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/member"
	"github.com/trezcool/shule/core/session"
	emailsvc "github.com/trezcool/shule/services/email"
	logsvc "github.com/trezcool/shule/services/logger"
	"github.com/trezcool/shule/storage/database"
	sqlxrepos "github.com/trezcool/shule/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	std := log.New(os.Stdout, conf.AppName+" ", log.LstdFlags|log.Lshortfile)
	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	// set up DB
	sqlDB, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer func() { _ = sqlDB.Close() }()
	db := sqlx.NewDb(sqlDB, conf.Database.Engine)

	// set up repos
	dir := sqlxrepos.NewMemberDirectory(db)
	sessionRepo := sqlxrepos.NewSessionRepository(db)
	attendanceRepo := sqlxrepos.NewAttendanceRepository(db)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}
	validate, translator := core.NewValidator()
	memberSvc := member.NewService(dir)
	sessionSvc := session.NewService(sessionRepo, attendanceRepo, validate)
	attendanceSvc := attendance.NewService(attendanceRepo, sessionRepo, dir, mailSvc, logger, conf)

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(
		&echoapi.Options{
			Address:        conf.Server.Address(),
			Conf:           conf,
			Logger:         logger,
			Validate:       validate,
			Translator:     translator,
			SessionSvc:     sessionSvc,
			AttendanceSvc:  attendanceSvc,
			MemberSvc:      memberSvc,
			SignalShutdown: func() { shutdown <- syscall.SIGTERM },
		},
	)
	go app.Start()

	<-shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		logger.Error("stopping server", err)
	}
}
