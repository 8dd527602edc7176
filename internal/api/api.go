package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/affiliates"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/audit"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/clients"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/consultations"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/events"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/ledger"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/permissions"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/plans"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/staff"
)

// The handler depends on narrow interfaces; the pgx repos and domain
// services are the production implementations.

type ClientStore interface {
	List(ctx context.Context) ([]clients.Client, error)
	Get(ctx context.Context, id int64) (*clients.Client, error)
	Create(ctx context.Context, name, email string, planID int64) (*clients.Client, error)
	Update(ctx context.Context, id int64, name, email string) error
	Delete(ctx context.Context, id int64) error
	ChangePlan(ctx context.Context, id, planID int64) error
}

type PlanStore interface {
	List(ctx context.Context) ([]plans.Plan, error)
	Get(ctx context.Context, id int64) (*plans.Plan, error)
	Create(ctx context.Context, p plans.Plan) (int64, error)
	Update(ctx context.Context, p plans.Plan) error
	Delete(ctx context.Context, id int64) error
}

type StaffStore interface {
	List(ctx context.Context) ([]staff.Member, error)
	Get(ctx context.Context, id int64) (*staff.Member, error)
	Create(ctx context.Context, name, email string, role staff.Role) (int64, error)
	Approve(ctx context.Context, id int64) (*staff.Member, error)
	Delete(ctx context.Context, id int64) error
}

type TicketLedger interface {
	Debit(ctx context.Context, clientID int64, typ ledger.ConsumptionType, description string, relatedID *int64, amount int) error
	Passbook(ctx context.Context, clientID int64) ([]ledger.PassbookEntry, error)
}

type ConsultationService interface {
	Create(ctx context.Context, clientID int64, subject, priority, category string) (*consultations.Ticket, error)
	Get(ctx context.Context, id int64) (*consultations.Ticket, error)
	List(ctx context.Context, clientID int64) ([]consultations.Ticket, error)
	Transition(ctx context.Context, id int64, to consultations.Status, actorID int64, actorName string) error
	Assign(ctx context.Context, id, staffID int64) error
	Participants(ctx context.Context, ticketID int64) ([]consultations.Participant, error)
	Invite(ctx context.Context, ticketID, staffID int64) error
}

type EventService interface {
	List(ctx context.Context, kind events.Kind) ([]events.Event, error)
	Get(ctx context.Context, kind events.Kind, id int64) (*events.Event, error)
	Apply(ctx context.Context, kind events.Kind, eventID, clientID, userID int64, userName string) error
	Applications(ctx context.Context, kind events.Kind, eventID int64) ([]events.Application, error)
	Create(ctx context.Context, kind events.Kind, title, location string, capacity int, heldAt time.Time) (int64, error)
	Update(ctx context.Context, id int64, title, location string, capacity int, heldAt time.Time) error
	Delete(ctx context.Context, id int64) error
}

type AffiliateStore interface {
	ListAffiliates(ctx context.Context) ([]affiliates.Affiliate, error)
	CreateReferral(ctx context.Context, affiliateID, clientID int64) (int64, error)
	Approve(ctx context.Context, referralID int64) (*affiliates.Payout, error)
	ListPayouts(ctx context.Context, affiliateID int64) ([]affiliates.Payout, error)
}

type AuditLog interface {
	Search(ctx context.Context, f audit.Filter) ([]audit.Entry, error)
}

type Handler struct {
	clients    ClientStore
	plans      PlanStore
	staff      StaffStore
	ledger     TicketLedger
	consults   ConsultationService
	events     EventService
	affiliates AffiliateStore
	audit      AuditLog
	recorder   *audit.Recorder
	log        *slog.Logger
}

func New(
	clientsRepo ClientStore,
	plansRepo PlanStore,
	staffRepo StaffStore,
	ledgerSvc TicketLedger,
	consultSvc ConsultationService,
	eventSvc EventService,
	affiliatesRepo AffiliateStore,
	auditRepo AuditLog,
	recorder *audit.Recorder,
	log *slog.Logger,
) *Handler {
	return &Handler{
		clients: clientsRepo, plans: plansRepo, staff: staffRepo,
		ledger: ledgerSvc, consults: consultSvc, events: eventSvc,
		affiliates: affiliatesRepo, audit: auditRepo, recorder: recorder,
		log: log,
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/clients", func(r chi.Router) {
		r.Get("/", h.listClients)
		r.Post("/", h.createClient)
		r.Get("/{id}", h.getClient)
		r.Put("/{id}", h.updateClient)
		r.Delete("/{id}", h.deleteClient)
		r.Get("/{id}/capabilities", h.clientCapabilities)
		r.Post("/{id}/plan", h.changeClientPlan)
		r.Post("/{id}/tickets/debit", h.debitTickets)
		r.Get("/{id}/tickets/passbook", h.passbook)
	})

	r.Route("/plans", func(r chi.Router) {
		r.Get("/", h.listPlans)
		r.Get("/{id}", h.getPlan)
		r.Group(func(r chi.Router) {
			r.Use(h.requirePerm(permissions.PermManagePlans))
			r.Post("/", h.createPlan)
			r.Put("/{id}", h.updatePlan)
			r.Delete("/{id}", h.deletePlan)
		})
	})

	r.Route("/consultations", func(r chi.Router) {
		r.Get("/", h.listConsultations)
		r.Post("/", h.createConsultation)
		r.Get("/{id}", h.getConsultation)
		r.Post("/{id}/status", h.transitionConsultation)
		r.Post("/{id}/assignee", h.assignConsultation)
		r.Get("/{id}/participants", h.listParticipants)
		r.Post("/{id}/participants", h.inviteParticipant)
	})

	// seminars and events share one aggregate; the route pins the kind
	r.Route("/seminars", func(r chi.Router) {
		r.Get("/", h.listKind(events.KindSeminar))
		r.Get("/{id}", h.getKind(events.KindSeminar))
		r.Get("/{id}/applications", h.listApplicationsKind(events.KindSeminar))
		r.Post("/{id}/applications", h.applyKind(events.KindSeminar))
	})
	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.listKind(events.KindEvent))
		r.Get("/{id}", h.getKind(events.KindEvent))
		r.Get("/{id}/applications", h.listApplicationsKind(events.KindEvent))
		r.Post("/{id}/applications", h.applyKind(events.KindEvent))
		r.Group(func(r chi.Router) {
			r.Use(h.requirePerm(permissions.PermManageEvents))
			r.Post("/", h.createEvent)
			r.Put("/{id}", h.updateEvent)
			r.Delete("/{id}", h.deleteEvent)
		})
	})

	r.Route("/staff", func(r chi.Router) {
		r.Get("/", h.listStaff)
		r.Get("/{id}", h.getStaff)
		r.Group(func(r chi.Router) {
			r.Use(h.requirePerm(permissions.PermManageStaff))
			r.Post("/", h.createStaff)
			r.Delete("/{id}", h.deleteStaff)
			r.Post("/{id}/approve", h.approveStaff)
		})
	})

	r.With(h.requirePerm(permissions.PermViewAuditLogs)).Get("/audit-logs", h.searchAuditLogs)

	r.Get("/affiliates", h.listAffiliates)
	r.Post("/referrals", h.createReferral)
	r.With(h.requirePerm(permissions.PermApproveReferral)).Post("/referrals/{id}/approve", h.approveReferral)
	r.Get("/payouts", h.listPayouts)

	return r
}

func parseID(s string) int64 {
	id, _ := strconv.ParseInt(s, 10, 64)
	return id
}

func urlID(r *http.Request) int64 {
	return parseID(chi.URLParam(r, "id"))
}
