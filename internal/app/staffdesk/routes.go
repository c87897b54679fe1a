package staffdesk

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/staffdesk/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/staffdesk/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/staffdesk/internal/http/handlers/auth/password"
	"github.com/magabrotheeeer/staffdesk/internal/http/handlers/auth/signup"
	"github.com/magabrotheeeer/staffdesk/internal/http/handlers/auth/updateme"
	"github.com/magabrotheeeer/staffdesk/internal/http/handlers/health"
	permlist "github.com/magabrotheeeer/staffdesk/internal/http/handlers/permission/list"
	"github.com/magabrotheeeer/staffdesk/internal/http/handlers/upload/file"
	"github.com/magabrotheeeer/staffdesk/internal/http/handlers/upload/files"
	"github.com/magabrotheeeer/staffdesk/internal/http/handlers/user/create"
	"github.com/magabrotheeeer/staffdesk/internal/http/handlers/user/list"
	"github.com/magabrotheeeer/staffdesk/internal/http/handlers/user/read"
	"github.com/magabrotheeeer/staffdesk/internal/http/handlers/user/remove"
	"github.com/magabrotheeeer/staffdesk/internal/http/handlers/user/update"
	"github.com/magabrotheeeer/staffdesk/internal/http/middlewarectx"
	"github.com/magabrotheeeer/staffdesk/internal/http/pipeline"
	"github.com/magabrotheeeer/staffdesk/internal/lib/ratelimit"
	"github.com/magabrotheeeer/staffdesk/internal/metrics"
	"github.com/magabrotheeeer/staffdesk/internal/models"
	"github.com/magabrotheeeer/staffdesk/internal/permissions"
	authservice "github.com/magabrotheeeer/staffdesk/internal/services/auth"
	uploadservice "github.com/magabrotheeeer/staffdesk/internal/services/upload"
	userservice "github.com/magabrotheeeer/staffdesk/internal/services/user"
)

const apiPrefix = "/api/v1"

// Максимум файлов в одном запросе на пакетную загрузку.
const maxBatchFiles = 10

// Deps содержит зависимости маршрутов.
type Deps struct {
	Log        *slog.Logger
	Auth       *authservice.Service
	Users      *userservice.Service
	Uploads    *uploadservice.Service
	Tokens     middlewarectx.TokenParser
	UserStore  middlewarectx.UserGetter
	Limiter    *ratelimit.Limiter
	Validator  *validator.Validate
	TrustProxy bool
}

// route — строка таблицы маршрутов. Из неё строятся и маршруты chi,
// и реестр эндпоинтов.
type route struct {
	module   string
	endpoint permissions.Endpoint
	guards   []pipeline.Step
	handle   pipeline.Func
}

type modulesFunc func() []permissions.Module

func (f modulesFunc) Modules() []permissions.Module { return f() }

var moduleDescriptions = map[string]string{
	"auth":        "Authentication and own profile",
	"users":       "Employee management",
	"upload":      "File uploads",
	"permissions": "Endpoint registry",
}

func dep(module, endpoint string) permissions.Dependency {
	return permissions.Dependency{Module: module, Endpoint: endpoint}
}

// routeTable описывает все эндпоинты /api/v1. registry отдаёт реестр,
// собранный из этой же таблицы.
func routeTable(d Deps, registry modulesFunc) []route {
	authn := middlewarectx.Authenticate(d.Tokens, d.UserStore)
	ceo := middlewarectx.RequireRoles(models.RoleCEO)
	limit := middlewarectx.RateLimit(d.Limiter)

	return []route{
		{
			module:   "auth",
			endpoint: permissions.Endpoint{Name: "login", Description: "Sign in with username and password", Method: http.MethodPost, Path: "/auth/login"},
			guards:   []pipeline.Step{limit, middlewarectx.Validate[models.LoginRequest](d.Validator)},
			handle:   login.New(d.Log, d.Auth).Handle,
		},
		{
			module:   "auth",
			endpoint: permissions.Endpoint{Name: "sign-up-ceo", Description: "Register the single CEO account", Method: http.MethodPost, Path: "/auth/sign-up/ceo"},
			guards:   []pipeline.Step{limit, middlewarectx.Validate[models.SignUpCEORequest](d.Validator)},
			handle:   signup.New(d.Log, d.Auth).Handle,
		},
		{
			module:   "auth",
			endpoint: permissions.Endpoint{Name: "me", Description: "Current user profile", Method: http.MethodGet, Path: "/auth/me"},
			guards:   []pipeline.Step{authn},
			handle:   me.Handle,
		},
		{
			module: "auth",
			endpoint: permissions.Endpoint{
				Name: "update-me", Description: "Update own profile", Method: http.MethodPatch, Path: "/auth/update-me",
				Dependencies: []permissions.Dependency{dep("auth", "me")},
			},
			guards: []pipeline.Step{authn, middlewarectx.Validate[models.UpdateMeRequest](d.Validator)},
			handle: updateme.New(d.Log, d.Auth).Handle,
		},
		{
			module: "auth",
			endpoint: permissions.Endpoint{
				Name: "update-password", Description: "Change own password", Method: http.MethodPatch, Path: "/auth/update-password",
				Dependencies: []permissions.Dependency{dep("auth", "me")},
			},
			guards: []pipeline.Step{authn, middlewarectx.Validate[models.UpdatePasswordRequest](d.Validator)},
			handle: password.New(d.Log, d.Auth).Handle,
		},
		{
			module:   "upload",
			endpoint: permissions.Endpoint{Name: "file", Description: "Upload a single image or PDF", Method: http.MethodPost, Path: "/upload/file"},
			guards:   []pipeline.Step{authn, middlewarectx.Uploads("file", 1)},
			handle:   file.New(d.Log, d.Uploads).Handle,
		},
		{
			module:   "upload",
			endpoint: permissions.Endpoint{Name: "files", Description: "Upload up to ten images or PDFs", Method: http.MethodPost, Path: "/upload/files"},
			guards:   []pipeline.Step{authn, middlewarectx.Uploads("files", maxBatchFiles)},
			handle:   files.New(d.Log, d.Uploads).Handle,
		},
		{
			module: "users",
			endpoint: permissions.Endpoint{
				Name: "create", Description: "Create an employee", Method: http.MethodPost, Path: "/user/create",
				Dependencies: []permissions.Dependency{dep("upload", "file")},
			},
			guards: []pipeline.Step{authn, ceo, middlewarectx.Validate[models.CreateUserRequest](d.Validator)},
			handle: create.New(d.Log, d.Users).Handle,
		},
		{
			module: "users",
			endpoint: permissions.Endpoint{
				Name: "update", Description: "Update an employee", Method: http.MethodPut, Path: "/user/update/{id}",
				Dependencies: []permissions.Dependency{dep("users", "get-one"), dep("upload", "file")},
			},
			guards: []pipeline.Step{authn, ceo, middlewarectx.Validate[models.UpdateUserRequest](d.Validator)},
			handle: update.New(d.Log, d.Users).Handle,
		},
		{
			module:   "users",
			endpoint: permissions.Endpoint{Name: "get-all", Description: "List employees with paging and search", Method: http.MethodGet, Path: "/user/get-all"},
			guards:   []pipeline.Step{authn, ceo, middlewarectx.Validate[models.ListUsersRequest](d.Validator)},
			handle:   list.New(d.Users).Handle,
		},
		{
			module:   "users",
			endpoint: permissions.Endpoint{Name: "get-one", Description: "Get an employee", Method: http.MethodGet, Path: "/user/get-one/{id}"},
			guards:   []pipeline.Step{authn, ceo, middlewarectx.Validate[models.UserIDRequest](d.Validator)},
			handle:   read.New(d.Users).Handle,
		},
		{
			module: "users",
			endpoint: permissions.Endpoint{
				Name: "delete", Description: "Delete an employee", Method: http.MethodDelete, Path: "/user/delete/{id}",
				Dependencies: []permissions.Dependency{dep("users", "get-all")},
			},
			guards: []pipeline.Step{authn, ceo, middlewarectx.Validate[models.UserIDRequest](d.Validator)},
			handle: remove.New(d.Log, d.Users).Handle,
		},
		{
			module:   "permissions",
			endpoint: permissions.Endpoint{Name: "list", Description: "Endpoint registry by module", Method: http.MethodGet, Path: "/permissions"},
			guards:   []pipeline.Step{authn, ceo},
			handle:   permlist.New(registry).Handle,
		},
	}
}

// buildRegistry собирает реестр из таблицы маршрутов.
func buildRegistry(routes []route) (*permissions.Registry, error) {
	b := permissions.NewBuilder()
	for _, rt := range routes {
		if desc, ok := moduleDescriptions[rt.module]; ok {
			b.Describe(rt.module, desc)
		}
		ep := rt.endpoint
		ep.Path = apiPrefix + ep.Path
		b.Add(rt.module, ep)
	}
	return b.Build()
}

// RegisterRoutes регистрирует все маршруты приложения и возвращает реестр эндпоинтов.
func RegisterRoutes(r chi.Router, d Deps) (*permissions.Registry, error) {
	var registry *permissions.Registry
	routes := routeTable(d, func() []permissions.Module { return registry.Modules() })

	registry, err := buildRegistry(routes)
	if err != nil {
		return nil, fmt.Errorf("staffdesk.RegisterRoutes: %w", err)
	}

	p := pipeline.New(d.Log)

	// Глобальные middleware
	r.Use(middleware.RequestID)
	if d.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		metrics.HTTPMiddleware,
	)

	r.Route(apiPrefix, func(r chi.Router) {
		for _, rt := range routes {
			guards := make([]func(http.Handler) http.Handler, 0, len(rt.guards))
			for _, g := range rt.guards {
				guards = append(guards, p.Guard(g))
			}
			r.With(guards...).Method(rt.endpoint.Method, rt.endpoint.Path, p.Handle(rt.handle))
		}
	})

	r.Method(http.MethodGet, "/health", p.Handle(health.Handle))
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)

	return registry, nil
}
