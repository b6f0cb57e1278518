package boot

import (
	"log"
	"os"

	"rsv/src/codes"
	"rsv/src/common"
	"rsv/src/config"
	"rsv/src/db"
	"rsv/src/engine"
	"rsv/src/hooks"
	"rsv/src/lib"
	"rsv/src/models"
	"rsv/src/types"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.Organization{},
		&models.Event{},
		&models.Ticket{},
		&models.InventoryItem{},
		&models.Reservation{},
		&models.SpecialPriceCode{},
		&models.WaitingEntry{},
		&models.Transaction{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitBroker starts the messaging side: local Kafka topics when running
// on a laptop, plus the consumer that settles incoming bank transfers.
func InitBroker(e *engine.Engine, conn *gorm.DB) {
	if os.Getenv("API_ENV") == string(types.Local) {
		go lib.KafkaCreateTopics(
			lib.WithSuffix(common.TransferQueue),
			lib.WithSuffix(hooks.Topic),
			lib.WithSuffix(os.Getenv("EMAIL_QUEUE")),
		)
	}
	common.StartTransferConsumer(e, conn)
	common.StartMailConsumer()
}

// InitScheduler registers the maintenance sweeps and starts the shared
// scheduler.
func InitScheduler(e *engine.Engine, allocator *codes.Allocator, cfg config.Snapshot) {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	if err := common.RegisterSweeps(e, allocator, cfg); err != nil {
		log.Printf("Error registering sweeps: %s\n", err.Error())
		return
	}
	log.Println("Jobs in queue:", len(sched.Jobs()))
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}
