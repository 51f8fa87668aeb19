package common

const (
	RedisStreamSchedulerTaskExecution = "schedule.task.execution"
	RedisStreamMarketCollector        = "market.collector"
	RedisStreamMarketRegime           = "market.regime"
	RedisStreamEventSync              = "market.event.sync"

	RedisStreamGroup    = "analyzer-group"
	RedisStreamConsumer = "analyzer-consumer"
)
