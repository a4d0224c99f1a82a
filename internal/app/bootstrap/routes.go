// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authgooglefeature "github.com/roomiehq/roomies/internal/app/features/authgoogle"
	calendarfeature "github.com/roomiehq/roomies/internal/app/features/calendar"
	choresfeature "github.com/roomiehq/roomies/internal/app/features/chores"
	devtoolsfeature "github.com/roomiehq/roomies/internal/app/features/devtools"
	errorsfeature "github.com/roomiehq/roomies/internal/app/features/errors"
	groupsetupfeature "github.com/roomiehq/roomies/internal/app/features/groupsetup"
	healthfeature "github.com/roomiehq/roomies/internal/app/features/health"
	homefeature "github.com/roomiehq/roomies/internal/app/features/home"
	loginfeature "github.com/roomiehq/roomies/internal/app/features/login"
	logoutfeature "github.com/roomiehq/roomies/internal/app/features/logout"
	profilefeature "github.com/roomiehq/roomies/internal/app/features/profile"
	signupfeature "github.com/roomiehq/roomies/internal/app/features/signup"
	chorestore "github.com/roomiehq/roomies/internal/app/store/chores"
	eventstore "github.com/roomiehq/roomies/internal/app/store/events"
	groupstore "github.com/roomiehq/roomies/internal/app/store/groups"
	userstore "github.com/roomiehq/roomies/internal/app/store/users"
	"github.com/roomiehq/roomies/internal/app/system/auth"
	"github.com/roomiehq/roomies/internal/app/system/membership"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	errLog := errorsfeature.NewErrorLogger(logger)

	db := deps.MongoDatabase
	users := userstore.New(db)
	groups := groupstore.New(db)
	chores := chorestore.New(db)
	events := eventstore.New(db)
	memberSvc := membership.New(users, groups, db, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Identity
	signupHandler := signupfeature.NewHandler(users, sessionMgr, errLog, logger)
	r.Mount("/signup", signupfeature.Routes(signupHandler))

	loginHandler := loginfeature.NewHandler(users, sessionMgr, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	googleHandler := authgooglefeature.NewHandler(users, sessionMgr,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	// Signed-in application surface
	r.Group(func(r chi.Router) {
		r.Use(sessionMgr.RequireSignedIn)

		homeHandler := homefeature.NewHandler(memberSvc, errLog, logger)
		r.Mount("/home", homefeature.Routes(homeHandler))

		groupHandler := groupsetupfeature.NewHandler(users, memberSvc, errLog, logger)
		r.Mount("/groups", groupsetupfeature.Routes(groupHandler))

		choresHandler := choresfeature.NewHandler(chores, memberSvc, errLog, logger)
		r.Mount("/chores", choresfeature.Routes(choresHandler))

		calendarHandler := calendarfeature.NewHandler(events, memberSvc, errLog, logger)
		r.Mount("/calendar", calendarfeature.Routes(calendarHandler))

		profileHandler := profilefeature.NewHandler(users, sessionMgr, errLog, logger)
		r.Mount("/profile", profilefeature.Routes(profileHandler))
	})

	// Development tools, mounted only when enabled.
	if appCfg.DevTools {
		devHandler := devtoolsfeature.NewHandler(db, true, errLog, logger)
		r.Mount("/dev", devtoolsfeature.Routes(devHandler))
	}

	return r, nil
}
