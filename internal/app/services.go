package app

import (
	"go.uber.org/fx"

	"github.com/Alijeyrad/dentaldesk/config"
	"github.com/Alijeyrad/dentaldesk/internal/service/clinic"
	"github.com/Alijeyrad/dentaldesk/internal/service/dashboard"
	"github.com/Alijeyrad/dentaldesk/internal/service/patient"
	"github.com/Alijeyrad/dentaldesk/internal/service/payment"
	"github.com/Alijeyrad/dentaldesk/internal/table"
	"github.com/Alijeyrad/dentaldesk/pkg/restclient"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideCatalog,
		ProvideDashboardService,
		ProvideOverviewService,
		ProvideHistoryService,
	),
)

func ProvideCatalog(cfg *config.Config) (*clinic.Catalog, error) {
	return clinic.NewCatalog(clinic.OptionsFromConfig(cfg.Dashboard))
}

func ProvideDashboardService(catalog *clinic.Catalog, client *restclient.Client, cfg *config.Config) (dashboard.Service, error) {
	return dashboard.New(catalog, backends(client), dashboard.OptionsFromConfig(cfg.Dashboard))
}

func ProvideOverviewService(catalog *clinic.Catalog, client *restclient.Client, dash dashboard.Service) payment.Service {
	return payment.New(catalog, backends(client), dash.Now)
}

func ProvideHistoryService(client *restclient.Client, dash dashboard.Service) patient.HistoryService {
	return patient.NewHistoryService(client.Resource(patient.HistoryEntity), dash.Now)
}

func backends(client *restclient.Client) func(entity string) table.Backend {
	return func(entity string) table.Backend {
		return client.Resource(entity)
	}
}
