// Package pages отдает HTML-страницы сервиса: формы входа и регистрации
// и личный кабинет. Шаблоны встроены в бинарь через embed.
package pages

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/user-account-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/user-account-service/internal/lib/sl"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Handler отдает HTML-страницы по встроенным шаблонам.
type Handler struct {
	log  *slog.Logger
	tmpl *template.Template
}

// New парсит встроенные шаблоны и возвращает Handler.
// Ошибка парсинга фатальна: без шаблонов страницы отдать нечем.
func New(log *slog.Logger) (*Handler, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Handler{log: log, tmpl: tmpl}, nil
}

// Login отдает форму входа. Уже аутентифицированный пользователь
// перенаправляется в личный кабинет.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if _, ok := middlewarectx.UserFromContext(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	h.render(w, r, "login.html", nil)
}

// Register отдает форму регистрации.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register.html", nil)
}

// Dashboard отдает личный кабинет текущего пользователя.
// Маршрут закрыт middleware, поэтому пользователь в контексте всегда есть.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	h.render(w, r, "dashboard.html", map[string]any{
		"Username":  user.Username,
		"FirstName": user.FirstName,
		"LastName":  user.LastName,
		"Email":     user.Email,
	})
}

// Index перенаправляет с корня на страницу входа.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	const op = "handlers.pages.render"

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		h.log.Error("failed to render template",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("template", name),
			sl.Err(err))
	}
}
