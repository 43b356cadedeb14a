package counter

import (
	"context"
	"log"
	"strconv"

	"github.com/aifoundry/foundry/app/models"
	"github.com/aifoundry/foundry/internal/pkg/cache"
)

const deliveriesKey = "webhook:counters:deliveries"

// AddDeliverySuccess increments the successful-delivery counter in Redis.
// Counters are best-effort observability; failures are logged, never returned.
func AddDeliverySuccess() {
	add(models.EVENT_STATUS_SUCCESS)
}

// AddDeliveryFailure increments the failed-delivery counter in Redis.
func AddDeliveryFailure() {
	add(models.EVENT_STATUS_FAILED)
}

func add(field string) {
	ctx := context.Background()
	if err := cache.GetClient().HIncrBy(ctx, deliveriesKey, field, 1).Err(); err != nil {
		log.Printf("failed to increment %s delivery counter: %v", field, err)
	}
}

// GetDeliveryStats returns the accumulated delivery counters by status.
func GetDeliveryStats() (map[string]int64, error) {
	ctx := context.Background()
	raw, err := cache.GetClient().HGetAll(ctx, deliveriesKey).Result()
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int64, len(raw))
	for field, value := range raw {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			stats[field] = n
		}
	}
	return stats, nil
}
