package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EmptyPlantName names the placeholder plant every new terrarium starts with.
const EmptyPlantName = "Empty"

// MaxReadingHistory caps the snapshots kept on a live terrarium.
const MaxReadingHistory = 48

// TerrariumModel is a catalog entry describing a physical terrarium kit.
type TerrariumModel struct {
	ID             uuid.UUID `json:"_id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ModelID        int       `json:"ModelID" gorm:"uniqueIndex;not null"`
	SpaceAvailable float64   `json:"SpaceAvailable"`
}

// Plant is a catalog entry with the conditions the plant wants.
type Plant struct {
	ID               uuid.UUID `json:"_id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name             string    `json:"Name" gorm:"uniqueIndex;not null"`
	Temperature      float64   `json:"Temperature"`
	SoilMoisture     float64   `json:"SoilMoisture"`
	Humidity         float64   `json:"Humidity"`
	LightLevel       float64   `json:"LightLevel"`
	GrowthTimeDays   int       `json:"GrowthTimeDays"`
	SpaceRequirement float64   `json:"SpaceRequirement"`
}

// Readings are the environmental values last reported for a terrarium.
type Readings struct {
	Temperature  float64 `json:"Temperature"`
	SoilMoisture float64 `json:"SoilMoisture"`
	Humidity     float64 `json:"Humidity"`
	LightLevel   float64 `json:"LightLevel"`
}

// ReadingSnapshot is one entry of a terrarium's reading history.
type ReadingSnapshot struct {
	Readings
	DaysGrown  int       `json:"DaysGrown"`
	RecordedAt time.Time `json:"RecordedAt"`
}

// LiveTerrarium links a user, a terrarium model and a plant, together with the
// current readings.
type LiveTerrarium struct {
	ID           uuid.UUID                            `json:"_id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID       uuid.UUID                            `json:"User" gorm:"type:uuid;index;not null"`
	ModelID      uuid.UUID                            `json:"Model" gorm:"type:uuid;not null"`
	PlantID      uuid.UUID                            `json:"Plant" gorm:"type:uuid;not null"`
	Temperature  float64                              `json:"Temperature"`
	SoilMoisture float64                              `json:"SoilMoisture"`
	Humidity     float64                              `json:"Humidity"`
	LightLevel   float64                              `json:"LightLevel"`
	DaysGrown    int                                  `json:"DaysGrown"`
	History      datatypes.JSONSlice[ReadingSnapshot] `json:"History"`
	CreatedAt    time.Time                            `json:"CreatedAt"`
	UpdatedAt    time.Time                            `json:"UpdatedAt"`
}

// NewLiveTerrarium builds an unsaved terrarium with zeroed readings.
func NewLiveTerrarium(userID, modelID, plantID uuid.UUID) *LiveTerrarium {
	now := time.Now()
	return &LiveTerrarium{
		ID:        uuid.New(),
		UserID:    userID,
		ModelID:   modelID,
		PlantID:   plantID,
		History:   datatypes.JSONSlice[ReadingSnapshot]{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CurrentReadings returns the readings stored on the terrarium.
func (t *LiveTerrarium) CurrentReadings() Readings {
	return Readings{
		Temperature:  t.Temperature,
		SoilMoisture: t.SoilMoisture,
		Humidity:     t.Humidity,
		LightLevel:   t.LightLevel,
	}
}

// ApplyReadings overwrites the current readings and appends a snapshot,
// dropping the oldest entries beyond MaxReadingHistory.
func (t *LiveTerrarium) ApplyReadings(r Readings, daysGrown int, at time.Time) {
	t.Temperature = r.Temperature
	t.SoilMoisture = r.SoilMoisture
	t.Humidity = r.Humidity
	t.LightLevel = r.LightLevel
	t.DaysGrown = daysGrown

	t.History = append(t.History, ReadingSnapshot{
		Readings:   r,
		DaysGrown:  daysGrown,
		RecordedAt: at,
	})
	if len(t.History) > MaxReadingHistory {
		t.History = t.History[len(t.History)-MaxReadingHistory:]
	}
	t.UpdatedAt = at
}
