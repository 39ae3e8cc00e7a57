package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	apiURL := "http://localhost:3000"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "scenario":
		scenarioCmd(apiURL, args)
	case "full":
		fullCmd(apiURL, args)
	case "readings":
		readingsCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Terrarium Simulator - Development tool for exercising the API

USAGE:
  simulator <command> [options]

COMMANDS:
  scenario  Register, read the profile, log out and confirm the session is gone
  full      Register a grower, create a terrarium, plant it and stream readings
  readings  Stream sensor readings into an existing terrarium
  help      Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:3000)

EXAMPLES:
  # Smoke-test the session flow
  simulator scenario

  # Grow some basil with 20 readings, one per second
  simulator full --plant=Basil --count=20 --interval=1s

  # Push readings into a terrarium created elsewhere
  simulator readings --terrarium=<id> --count=5`)
}

func fail(step string, err error) {
	fmt.Printf("FAILED\n  %s: %v\n", step, err)
	os.Exit(1)
}

func scenarioCmd(apiURL string, args []string) {
	fs := pflag.NewFlagSet("scenario", pflag.ExitOnError)
	username := fs.String("username", "alice_"+uuid.NewString()[:6], "username to register")
	password := fs.String("password", "pw123!", "password")
	email := fs.String("email", "a@x.com", "email address")
	fs.Parse(args)

	client := NewAPIClient(apiURL)

	fmt.Println("=== Terrarium Simulator: Session Scenario ===")
	fmt.Println()

	fmt.Print("Registering... ")
	session, err := client.Register(*username, *password, *email)
	if err != nil {
		fail("register", err)
	}
	fmt.Printf("OK (id: %s)\n", session.ID)

	fmt.Print("Reading profile... ")
	me, err := client.Me()
	if err != nil {
		fail("me", err)
	}
	if me.Username != *username || me.EmailAddress != *email {
		fail("me", fmt.Errorf("unexpected profile %+v", me))
	}
	fmt.Println("OK")

	fmt.Print("Logging out... ")
	if err := client.Logout(); err != nil {
		fail("logout", err)
	}
	fmt.Println("OK")

	fmt.Print("Checking session is gone... ")
	_, err = client.Me()
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusForbidden {
		fail("me after logout", fmt.Errorf("expected 403, got %v", err))
	}
	fmt.Println("OK")

	fmt.Print("Logging back in... ")
	if _, err := client.Login(*username, *password); err != nil {
		fail("login", err)
	}
	fmt.Println("OK")

	fmt.Println()
	fmt.Println("Scenario passed.")
}

func fullCmd(apiURL string, args []string) {
	fs := pflag.NewFlagSet("full", pflag.ExitOnError)
	plantName := fs.String("plant", "Basil", "plant to put in the terrarium")
	modelNumber := fs.Int("model", 1, "catalog ModelID of the terrarium kit")
	count := fs.Int("count", 10, "number of readings to send")
	interval := fs.Duration("interval", 500*time.Millisecond, "delay between readings")
	fs.Parse(args)

	client := NewAPIClient(apiURL)

	fmt.Println("=== Terrarium Simulator: Full Flow ===")
	fmt.Println()

	fmt.Print("Registering grower... ")
	username := "grower_" + uuid.NewString()[:8]
	session, err := client.Register(username, "testpassword123", username+"@example.com")
	if err != nil {
		fail("register", err)
	}
	fmt.Printf("OK (user: %s)\n", session.Username)

	fmt.Print("Loading catalog... ")
	models, err := client.ListModels()
	if err != nil {
		fail("list models", err)
	}
	plants, err := client.ListPlants()
	if err != nil {
		fail("list plants", err)
	}
	model, ok := findModel(models, *modelNumber)
	if !ok {
		fail("catalog", fmt.Errorf("no terrarium model %d", *modelNumber))
	}
	plant, ok := findPlant(plants, *plantName)
	if !ok {
		fail("catalog", fmt.Errorf("no plant named %q", *plantName))
	}
	fmt.Printf("OK (%d models, %d plants)\n", len(models), len(plants))

	fmt.Print("Creating terrarium... ")
	terrarium, err := client.CreateTerrarium(session.ID, model.ID)
	if err != nil {
		fail("create terrarium", err)
	}
	fmt.Printf("OK (id: %s)\n", terrarium.ID)

	fmt.Printf("Planting %s... ", plant.Name)
	if _, err := client.AssignPlant(terrarium.ID, plant.ID); err != nil {
		fail("assign plant", err)
	}
	fmt.Println("OK")

	fmt.Println()
	streamReadings(client, terrarium.ID, plant, *count, *interval)

	list, err := client.ListTerrariums(session.ID)
	if err != nil {
		fail("list terrariums", err)
	}
	fmt.Println()
	fmt.Printf("Grower %s now has %d terrarium(s).\n", session.Username, len(list))
}

func readingsCmd(apiURL string, args []string) {
	fs := pflag.NewFlagSet("readings", pflag.ExitOnError)
	terrariumID := fs.String("terrarium", "", "terrarium id (required)")
	count := fs.Int("count", 10, "number of readings to send")
	interval := fs.Duration("interval", 500*time.Millisecond, "delay between readings")
	fs.Parse(args)

	if *terrariumID == "" {
		fmt.Println("Error: --terrarium is required")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)
	target := Plant{Temperature: 21, SoilMoisture: 40, Humidity: 55, LightLevel: 60}
	streamReadings(client, *terrariumID, target, *count, *interval)
}

// streamReadings sends count readings that wander around the plant's
// preferred conditions.
func streamReadings(client *APIClient, terrariumID string, target Plant, count int, interval time.Duration) {
	for i := 1; i <= count; i++ {
		temperature := jitter(target.Temperature, 2)
		moisture := jitter(target.SoilMoisture, 5)
		humidity := jitter(target.Humidity, 5)
		light := jitter(target.LightLevel, 10)
		days := i

		t, err := client.RecordReadings(Readings{
			TerrariumID:  terrariumID,
			Temperature:  &temperature,
			SoilMoisture: &moisture,
			Humidity:     &humidity,
			LightLevel:   &light,
			DaysGrown:    &days,
		})
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED: %v\n", i, count, err)
			os.Exit(1)
		}
		fmt.Printf("  [%d/%d] temp=%.1f moisture=%.1f humidity=%.1f light=%.1f day=%d\n",
			i, count, t.Temperature, t.SoilMoisture, t.Humidity, t.LightLevel, t.DaysGrown)

		if i < count {
			time.Sleep(interval)
		}
	}
}

func jitter(value, spread float64) float64 {
	v := value + (rand.Float64()*2-1)*spread
	if v < 0 {
		return 0
	}
	return v
}

func findModel(models []Model, modelID int) (Model, bool) {
	for _, m := range models {
		if m.ModelID == modelID {
			return m, true
		}
	}
	return Model{}, false
}

func findPlant(plants []Plant, name string) (Plant, bool) {
	for _, p := range plants {
		if p.Name == name {
			return p, true
		}
	}
	return Plant{}, false
}
