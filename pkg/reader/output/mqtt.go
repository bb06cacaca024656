package output

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/norasector/fdxb/pkg/fdxb"
	"github.com/norasector/fdxb/pkg/reader/config"
	"github.com/rs/zerolog"
)

const (
	mqttQoS            = 1
	mqttPublishTimeout = 5 * time.Second
	mqttQuiesce        = 250
)

type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTOutput publishes every completed telegram to <topic>/tag.
type MQTTOutput struct {
	client   publisher
	topic    string
	recvChan chan *fdxb.Event
	logger   zerolog.Logger
}

// TagPayload is the JSON body of a tag message.
type TagPayload struct {
	Timestamp         int64  `json:"timestamp"`
	Protocol          string `json:"protocol"`
	Source            string `json:"source,omitempty"`
	TagID             string `json:"tag_id"`
	CountryCode       uint16 `json:"country_code"`
	NationalCode      uint64 `json:"national_code"`
	ChecksumValid     bool   `json:"checksum_valid"`
	DataBlock         bool   `json:"data_block"`
	AnimalApplication bool   `json:"animal_application"`
	ApplicationData   uint32 `json:"application_data,omitempty"`
}

// generateClientID falls back to the clock when entropy cannot be read.
func generateClientID(entropy io.Reader) string {
	b := make([]byte, 8)
	if _, err := io.ReadFull(entropy, b); err != nil {
		return fmt.Sprintf("fdxb_%x", time.Now().UnixNano())
	}
	return "fdxb_" + hex.EncodeToString(b)
}

// NewMQTTOutput connects to the configured broker.
func NewMQTTOutput(cfg config.MQTT, logger zerolog.Logger) (*MQTTOutput, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	if cfg.ClientID != "" {
		opts.SetClientID(cfg.ClientID)
	} else {
		opts.SetClientID(generateClientID(rand.Reader))
	}
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(10 * time.Second)
	opts.SetKeepAlive(60 * time.Second)

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		logger.Info().Str("broker", cfg.Broker).Msg("mqtt connected")
	})
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		logger.Warn().Err(err).Msg("mqtt connection lost")
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.WaitTimeout(mqttPublishTimeout) && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return newMQTTOutput(client, cfg.Topic, logger), nil
}

func newMQTTOutput(client publisher, topic string, logger zerolog.Logger) *MQTTOutput {
	return &MQTTOutput{
		client:   client,
		topic:    topic,
		recvChan: make(chan *fdxb.Event, eventBufferLength),
		logger:   logger,
	}
}

func (m *MQTTOutput) Receive() chan<- *fdxb.Event {
	return m.recvChan
}

func (m *MQTTOutput) publish(ev *fdxb.Event) error {
	tg := ev.Telegram
	body, err := json.Marshal(TagPayload{
		Timestamp:         time.Now().Unix(),
		Protocol:          fdxb.Metadata.ID,
		Source:            ev.Source,
		TagID:             tg.TagID,
		CountryCode:       tg.CountryCode,
		NationalCode:      tg.NationalCode,
		ChecksumValid:     tg.ChecksumValid,
		DataBlock:         tg.DataBlock,
		AnimalApplication: tg.AnimalApplication,
		ApplicationData:   tg.ApplicationData,
	})
	if err != nil {
		return err
	}

	token := m.client.Publish(m.topic+"/tag", mqttQoS, false, body)
	if !token.WaitTimeout(mqttPublishTimeout) {
		return fmt.Errorf("timed out publishing tag %s", tg.TagID)
	}
	return token.Error()
}

func (m *MQTTOutput) Start(ctx context.Context) error {
	defer m.client.Disconnect(mqttQuiesce)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-m.recvChan:
			if !ok {
				return nil
			}
			if ev.Telegram == nil {
				continue
			}
			// a broker outage should not stop decoding
			if err := m.publish(ev); err != nil {
				m.logger.Warn().Err(err).Str("tag_id", ev.Telegram.TagID).Msg("failed to publish tag")
			}
		}
	}
}
