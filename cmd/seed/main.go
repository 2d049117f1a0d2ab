// Command seed loads demo data: a manager, three sellers, clients across every
// sector with a primary contact, a priced catalog and a week of visits.
//
//	seed [-password demo1234] [-clients-per-sector 3]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/salescrm/backend/internal/domain/catalog"
	"github.com/salescrm/backend/internal/domain/client"
	"github.com/salescrm/backend/internal/domain/identity"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/salescrm/backend/internal/domain/visit"
	"github.com/salescrm/backend/internal/infrastructure/auth"
	"github.com/salescrm/backend/internal/infrastructure/config"
	"github.com/salescrm/backend/internal/infrastructure/logger"
	"github.com/salescrm/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const managerEmail = "gerente@crm.local"

type seedUser struct {
	name  string
	email string
	role  identity.Role
}

var users = []seedUser{
	{"Gerente Comercial", managerEmail, identity.RoleManager},
	{"Ana Torres", "ana.torres@crm.local", identity.RoleSeller},
	{"Luis Ramírez", "luis.ramirez@crm.local", identity.RoleSeller},
	{"Carla Medina", "carla.medina@crm.local", identity.RoleSeller},
}

var channels = []string{"Distribuidor", "Retail", "Venta directa"}

var products = []struct {
	code, name, unit string
	price            string
}{
	{"PRD-001", "Licencia anual estándar", "licencia", "1200.00"},
	{"PRD-002", "Licencia anual premium", "licencia", "2400.00"},
	{"PRD-003", "Implementación en sitio", "servicio", "3500.00"},
	{"PRD-004", "Capacitación por usuario", "usuario", "150.00"},
	{"PRD-005", "Soporte mensual", "mes", "300.00"},
}

// channel discounts over the base price
var channelFactors = []string{"0.85", "1.00", "0.95"}

var firstNames = []string{"María", "José", "Rosa", "Jorge", "Elena", "Pedro", "Lucía", "Miguel", "Sofía", "Diego"}
var lastNames = []string{"García", "Quispe", "Flores", "Rojas", "Vargas", "Castillo", "Mendoza", "Chávez", "Huamán", "Díaz"}

func main() {
	var (
		password  string
		perSector int
	)
	flag.StringVar(&password, "password", "demo1234", "Password assigned to every seeded user")
	flag.IntVar(&perSector, "clients-per-sector", 3, "Clients created in each sector")
	flag.Parse()

	log, err := logger.New(&logger.Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.App.IsProduction() {
		log.Fatal("Refusing to seed demo data in production")
	}
	time.Local = cfg.App.Location()

	db, err := persistence.Open(context.Background(), &cfg.Database, persistence.WithSessionTimeZone(cfg.App.Timezone))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	s := &seeder{
		users:    persistence.NewGormUserRepository(db.DB),
		clients:  persistence.NewGormClientRepository(db.DB),
		contacts: persistence.NewGormContactRepository(db.DB),
		visits:   persistence.NewGormVisitRepository(db.DB),
		products: persistence.NewGormProductRepository(db.DB),
		channels: persistence.NewGormChannelRepository(db.DB),
		hasher:   auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		log:      log,
	}

	ctx := context.Background()
	if _, err := s.users.FindByEmail(ctx, managerEmail); err == nil {
		log.Info("Demo data already present, nothing to do")
		return
	} else if !errors.Is(err, shared.ErrNotFound) {
		log.Fatal("Failed to check existing data", zap.Error(err))
	}

	tx := persistence.NewGormTxManager(db.DB)
	if err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.run(ctx, password, perSector)
	}); err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}
	log.Info("Demo data loaded",
		zap.Int("users", len(users)),
		zap.Int("clients", perSector*len(client.Sectors())),
		zap.Int("products", len(products)),
		zap.String("login", managerEmail))
}

type seeder struct {
	users    identity.UserRepository
	clients  client.ClientRepository
	contacts client.ContactRepository
	visits   visit.VisitRepository
	products catalog.ProductRepository
	channels catalog.ChannelRepository
	hasher   identity.PasswordHasher
	log      *zap.Logger
}

func (s *seeder) run(ctx context.Context, password string, perSector int) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	var manager *identity.User
	var sellers []*identity.User
	for _, su := range users {
		u, err := identity.NewUser(su.name, su.email, hash, su.role)
		if err != nil {
			return err
		}
		if err := s.users.Create(ctx, u); err != nil {
			return fmt.Errorf("create user %s: %w", su.email, err)
		}
		if su.role == identity.RoleManager {
			manager = u
		} else {
			sellers = append(sellers, u)
		}
	}

	if err := s.seedCatalog(ctx); err != nil {
		return err
	}

	clients, err := s.seedClients(ctx, perSector)
	if err != nil {
		return err
	}

	return s.seedVisits(ctx, manager, sellers, clients)
}

func (s *seeder) seedCatalog(ctx context.Context) error {
	var created []*catalog.Channel
	for _, name := range channels {
		ch, err := catalog.NewChannel(name)
		if err != nil {
			return err
		}
		if err := s.channels.Create(ctx, ch); err != nil {
			return fmt.Errorf("create channel %s: %w", name, err)
		}
		created = append(created, ch)
	}

	for _, item := range products {
		base := decimal.RequireFromString(item.price)
		p, err := catalog.NewProduct(item.code, item.name, "", base, item.unit)
		if err != nil {
			return err
		}
		for i, ch := range created {
			if err := p.SetChannelPrice(ch, base.Mul(decimal.RequireFromString(channelFactors[i]))); err != nil {
				return err
			}
		}
		if err := s.products.Create(ctx, p); err != nil {
			return fmt.Errorf("create product %s: %w", item.code, err)
		}
	}
	return nil
}

func (s *seeder) seedClients(ctx context.Context, perSector int) ([]*client.Client, error) {
	var out []*client.Client
	n := 0
	for si, sector := range client.Sectors() {
		for i := 0; i < perSector; i++ {
			n++
			c, err := client.NewClient(fmt.Sprintf("%s%06d", client.CodePrefix, n), client.ClientInput{
				RUC:              fmt.Sprintf("20%09d", 100000000+n),
				BusinessName:     fmt.Sprintf("Empresa Demo %02d-%d S.A.C.", si+1, i+1),
				Sector:           sector,
				Phone:            fmt.Sprintf("01%07d", 4000000+n),
				Address:          fmt.Sprintf("Av. Principal %d, Lima", 100+n),
				PotentialValue:   decimal.NewFromInt(int64(5000 * (i + 1))),
				CloseProbability: 10 * ((n % 9) + 1),
			})
			if err != nil {
				return nil, err
			}
			if err := s.clients.Create(ctx, c); err != nil {
				return nil, fmt.Errorf("create client %s: %w", c.Code, err)
			}

			first := firstNames[n%len(firstNames)]
			last := lastNames[(n/len(firstNames)+si)%len(lastNames)]
			contact, err := client.NewContact(c.ID, client.ContactInput{
				FirstName: first,
				LastName:  last,
				Title:     "Jefe de Compras",
				Mobile:    fmt.Sprintf("9%08d", 10000000+n),
				Email:     fmt.Sprintf("contacto%d@empresa%d.pe", n, n),
			})
			if err != nil {
				return nil, err
			}
			contact.SetPrimary(true)
			if err := s.contacts.Create(ctx, contact); err != nil {
				return nil, fmt.Errorf("create contact for %s: %w", c.Code, err)
			}
			out = append(out, c)
		}
	}
	return out, nil
}

// seedVisits spreads visits over the current ISO week. The first seller's plan
// is approved, the second is waiting for review and the third is still a draft.
func (s *seeder) seedVisits(ctx context.Context, manager *identity.User, sellers []*identity.User, clients []*client.Client) error {
	now := time.Now()
	week, year := visit.ISOWeek(now)
	monday := visit.WeekRange(week, year, time.Local).From

	shifts := []int{9, 15}
	types := []visit.Type{visit.TypeCommercial, visit.TypeTechnical}
	priorities := []visit.Priority{visit.PriorityMedium, visit.PriorityHigh, visit.PriorityLow}

	k := 0
	for si, seller := range sellers {
		for day := 0; day < 5; day++ {
			c := clients[k%len(clients)]
			k++
			at := monday.AddDate(0, 0, day).Add(time.Duration(shifts[day%len(shifts)]) * time.Hour)
			v, err := visit.NewDraftVisit(seller.ID, visit.Details{
				ClientID:    c.ID,
				Title:       "Visita a " + c.BusinessName,
				Objectives:  "Presentar propuesta comercial",
				ScheduledAt: at,
				Type:        types[k%len(types)],
				Priority:    priorities[k%len(priorities)],
			}, week, year)
			if err != nil {
				return err
			}
			if si < 2 {
				if err := v.Submit(now); err != nil {
					return err
				}
			}
			if si == 0 {
				if err := v.Approve(manager.ID, "Plan aprobado", now); err != nil {
					return err
				}
			}
			if err := s.visits.Create(ctx, v); err != nil {
				return fmt.Errorf("create visit for %s: %w", seller.Email, err)
			}
		}
	}
	s.log.Info("Visits planned", zap.Int("week", week), zap.Int("year", year), zap.Int("count", k))
	return nil
}
