package lib

import (
	"encoding/json"
	"log"
	"os"

	"kiteops/src/types"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

func GetKafkaProducerConfig() kafka.ConfigMap {
	return kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
		"client.id":         "kiteops",
		"acks":              "all",
	}
}

func KafkaProduceMessage(clientId, topic string, payload *types.JSONB) error {
	cfg := GetKafkaProducerConfig()
	cfg["client.id"] = clientId
	producer, err := kafka.NewProducer(&cfg)
	if err != nil {
		log.Printf("Failed to create producer: %s\n", err.Error())
		return err
	}
	defer producer.Close()

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	deliveryChan := make(chan kafka.Event, 1)
	err = producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          body,
	}, deliveryChan)
	if err != nil {
		log.Printf("Failed to produce message on topic %s: %s\n", topic, err.Error())
		return err
	}
	e := <-deliveryChan
	m := e.(*kafka.Message)
	if m.TopicPartition.Error != nil {
		log.Printf("Delivery failed: %v\n", m.TopicPartition.Error)
		return m.TopicPartition.Error
	}
	return nil
}

func KafkaConsumer(groupId string, topics []string, handler func(body string)) {
	log.Println("Initializing kafka Consumer...")
	master, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
		"group.id":          groupId,
		"auto.offset.reset": "smallest",
		"retry.backoff.ms":  100,
	})
	if err != nil {
		log.Printf("Error on consumer: %s\n", err.Error())
		return
	}
	err = master.SubscribeTopics(topics, nil)
	if err != nil {
		log.Printf("Error on consumer: %s\n", err.Error())
		return
	}
	go func() {
		log.Println("[BACKGROUND]: waiting for messages...")
		run := true
		for run {
			ev := master.Poll(100)
			switch e := ev.(type) {
			case *kafka.Message:
				handler(string(e.Value))
			case kafka.Error:
				log.Printf("Consumer error: %v\n", e)
				run = false
			default:
			}
		}
		master.Close()
	}()
}
