package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/joho/godotenv"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

// devStack is a database and an authorizer on one docker network
type devStack struct {
	network    *testcontainers.DockerNetwork
	db         testcontainers.Container
	authorizer testcontainers.Container
}

func (s *devStack) terminate(ctx context.Context) {
	for name, c := range map[string]testcontainers.Container{"authorizer": s.authorizer, "database": s.db} {
		if c == nil {
			continue
		}
		if err := c.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate %s: %v\n", name, err)
		}
	}
	if s.network != nil {
		if err := s.network.Remove(ctx); err != nil {
			log.Printf("Failed to remove network: %v\n", err)
		}
	}
}

func dbEnv(dbType string) map[string]string {
	if dbType == "postgres" {
		return map[string]string{
			"POSTGRES_PASSWORD": os.Getenv("DB_PASSWORD"),
			"POSTGRES_USER":     os.Getenv("DB_USER"),
			"POSTGRES_DB":       os.Getenv("DB_DATABASE"),
		}
	}
	return map[string]string{
		"MYSQL_ROOT_PASSWORD": os.Getenv("DB_PASSWORD"),
		"MYSQL_DATABASE":      os.Getenv("DB_DATABASE"),
		"MYSQL_USER":          os.Getenv("DB_APP_USER"),
		"MYSQL_PASSWORD":      os.Getenv("DB_APP_PASSWORD"),
	}
}

func start(ctx context.Context, s *devStack) error {
	nw, err := network.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to create network: %w", err)
	}
	s.network = nw

	dbType := os.Getenv("DB_TYPE")
	dbPort, err := nat.NewPort("tcp", os.Getenv("DB_PORT"))
	if err != nil {
		return fmt.Errorf("failed to create DB port: %w", err)
	}
	s.db, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:          os.Getenv("DB_IMAGE"),
			ExposedPorts:   []string{string(dbPort)},
			Env:            dbEnv(dbType),
			WaitingFor:     wait.ForListeningPort(dbPort).WithStartupTimeout(90 * time.Second),
			Networks:       []string{nw.Name},
			NetworkAliases: map[string][]string{nw.Name: {"database"}},
		},
		Started: true,
	})
	if err != nil {
		return fmt.Errorf("failed to start database: %w", err)
	}
	host, _ := s.db.Host(ctx)
	mapped, _ := s.db.MappedPort(ctx, dbPort)
	log.Printf("DB_HOST=%s DB_PORT=%s\n", host, mapped.Port())

	authzPort, err := nat.NewPort("tcp", os.Getenv("AUTHZ_PORT"))
	if err != nil {
		return fmt.Errorf("failed to create Authorizer port: %w", err)
	}
	s.authorizer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        os.Getenv("AUTHZ_IMAGE"),
			ExposedPorts: []string{string(authzPort)},
			Env: map[string]string{
				"ENV":           "production",
				"CLIENT_ID":     os.Getenv("AUTHZ_CLIENT_ID"),
				"PORT":          authzPort.Port(),
				"DATABASE_TYPE": "sqlite",
				"DATABASE_URL":  "/tmp/authorizer.db",
				"ADMIN_SECRET":  os.Getenv("AUTHZ_ADMIN_SECRET"),
				"ROLES":         "user",
				"DEFAULT_ROLES": "user",
			},
			WaitingFor: wait.ForLog("Authorizer running at PORT:").WithStartupTimeout(30 * time.Second),
			Networks:   []string{nw.Name},
		},
		Started: true,
	})
	if err != nil {
		return fmt.Errorf("failed to start Authorizer: %w", err)
	}
	host, _ = s.authorizer.Host(ctx)
	mapped, _ = s.authorizer.MappedPort(ctx, authzPort)
	log.Printf("AUTHZ_URL=http://%s:%s\n", host, mapped.Port())
	return nil
}

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	flag.Parse()

	usage := `
Run a database and an authorizer for local medrecords development with the
environment variables from the .env file.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH]

ENV_FILE_PATH: path to the .env file

example
  testcontainers -f /path/to/something/.env
`
	// if -h flag print usage and return
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	} else {
		log.Printf("No environment file specified, using current environment variables\n")
	}

	ctx := context.Background()
	stack := &devStack{}
	if err := start(ctx, stack); err != nil {
		stack.terminate(ctx)
		log.Fatalf("%v\n", err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-sigs
	log.Printf("\nReceived signal: %v, terminating test containers...\n", sig)
	stack.terminate(ctx)
}
