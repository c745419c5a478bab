// seed_centers carga los centros de distribución iniciales en el almacenamiento configurado.
//
// Uso: go run ./cmd/seed_centers [-latin1] [centros.csv]
// Sin archivo carga C1, C2 y C3. Columnas CSV: center_id,stock,zip_code[,initial_stock].
// Un centro existente no se modifica.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/order-allocation/internal/domain/entity"
	"github.com/jhoicas/order-allocation/internal/domain/repository"
	"github.com/jhoicas/order-allocation/internal/infrastructure/store"
	"github.com/jhoicas/order-allocation/pkg/config"
	"github.com/jhoicas/order-allocation/pkg/logger"
)

func defaultCenters() []*entity.DistributionCenter {
	return []*entity.DistributionCenter{
		{CenterID: "C1", Stock: 100, InitialStock: entity.DefaultInitialStock, ZipCode: "10000"},
		{CenterID: "C2", Stock: 50, InitialStock: entity.DefaultInitialStock, ZipCode: "10003"},
		{CenterID: "C3", Stock: 75, InitialStock: entity.DefaultInitialStock, ZipCode: "10005"},
	}
}

func main() {
	latin1 := flag.Bool("latin1", false, "el CSV viene en ISO-8859-1")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	centers := defaultCenters()
	if path := flag.Arg(0); path != "" {
		f, err := os.Open(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("abrir CSV")
		}
		var r io.Reader = f
		if *latin1 {
			r = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
		}
		centers, err = parseCenters(r)
		_ = f.Close()
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("leer CSV")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stores, err := store.Open(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer stores.Close()
	if stores.Driver == config.DriverMemory {
		log.Warn().Msg("DB_DRIVER=memory: los centros no sobreviven a este proceso")
	}

	created, err := seed(ctx, stores.Centers, centers, log)
	if err != nil {
		log.Error().Err(err).Msg("seed incompleto")
		stores.Close()
		os.Exit(1)
	}
	log.Info().Int("created", created).Int("total", len(centers)).Msg("seed completado")
}

// seed crea los centros que no existen y devuelve cuántos se crearon.
func seed(ctx context.Context, repo repository.CenterRepository, centers []*entity.DistributionCenter, log *logger.Logger) (int, error) {
	created := 0
	for _, c := range centers {
		ok, err := repo.Upsert(ctx, c)
		if err != nil {
			return created, fmt.Errorf("centro %s: %w", c.CenterID, err)
		}
		if ok {
			created++
			log.Info().Str("center_id", c.CenterID).Int("stock", c.Stock).Str("zip_code", c.ZipCode).Msg("centro creado")
		} else {
			log.Info().Str("center_id", c.CenterID).Msg("centro ya existía, sin cambios")
		}
	}
	return created, nil
}

// parseCenters lee center_id,stock,zip_code[,initial_stock]; una cabecera con center_id se omite.
func parseCenters(r io.Reader) ([]*entity.DistributionCenter, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		out  []*entity.DistributionCenter
		errs []error
		seen = map[string]bool{}
	)
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if line == 1 && len(rec) > 0 && strings.EqualFold(strings.TrimPrefix(strings.TrimSpace(rec[0]), "\ufeff"), "center_id") {
			continue
		}
		c, err := parseRecord(rec)
		if err != nil {
			errs = append(errs, fmt.Errorf("línea %d: %w", line, err))
			continue
		}
		if seen[c.CenterID] {
			errs = append(errs, fmt.Errorf("línea %d: center_id %s repetido", line, c.CenterID))
			continue
		}
		seen[c.CenterID] = true
		out = append(out, c)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func parseRecord(rec []string) (*entity.DistributionCenter, error) {
	if len(rec) < 3 || len(rec) > 4 {
		return nil, fmt.Errorf("se esperaban 3 o 4 columnas, hay %d", len(rec))
	}
	stock, err := strconv.Atoi(strings.TrimSpace(rec[1]))
	if err != nil {
		return nil, fmt.Errorf("stock inválido %q", rec[1])
	}
	initial := entity.DefaultInitialStock
	if len(rec) == 4 && strings.TrimSpace(rec[3]) != "" {
		if initial, err = strconv.Atoi(strings.TrimSpace(rec[3])); err != nil {
			return nil, fmt.Errorf("initial_stock inválido %q", rec[3])
		}
	}
	c := &entity.DistributionCenter{
		CenterID:     strings.TrimPrefix(strings.TrimSpace(rec[0]), "\ufeff"),
		Stock:        stock,
		InitialStock: initial,
		ZipCode:      strings.TrimSpace(rec[2]),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
