// Package mqtt connects the agent to a local MQTT broker.
//
// The bridge republishes the house state the agent mirrors (sensor
// readings, equipment states, events) under the homegrid/ topic tree and
// accepts equipment commands from local integrations. Connection loss is
// handled by paho's auto-reconnect; tracked subscriptions are restored on
// every reconnect and a retained Last Will flags unexpected offline.
package mqtt
