package dispatcher

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pubcli/internal/irc"
	"pubcli/internal/pub"
	"pubcli/internal/pub/consumer"
)

// handler runs one operation. args is the whole positional argument list:
// project, operation name, then the operation's own arguments.
type handler func(ctx context.Context, d *Dispatcher, args []string) error

var handlers = map[Operation]handler{
	CreateTopic:        createTopic,
	PublishMessage:     publishMessage,
	ConnectIRC:         connectIRC,
	ListTopics:         listTopics,
	DeleteTopic:        deleteTopic,
	CreateSubscription: createSubscription,
	PullMessages:       pullMessages,
	ListSubscriptions:  listSubscriptions,
	DeleteSubscription: deleteSubscription,
}

// minArgs counts the project and the operation name.
var minArgs = map[Operation]int{
	ListTopics:         2,
	ListSubscriptions:  2,
	CreateTopic:        3,
	DeleteTopic:        3,
	DeleteSubscription: 3,
	PullMessages:       3,
	CreateSubscription: 4,
	PublishMessage:     4,
	ConnectIRC:         5,
}

func checkArgs(op Operation, args []string) error {
	if want := minArgs[op]; len(args) < want {
		return fmt.Errorf("%w: %s requires %d arguments, got %d", pub.ErrInsufficientArguments, op, want, len(args))
	}
	return nil
}

func createTopic(ctx context.Context, d *Dispatcher, args []string) error {
	if err := checkArgs(CreateTopic, args); err != nil {
		return err
	}

	topic := pub.TopicName(args[0], args[2])
	if err := d.service.CreateTopic(ctx, topic); err != nil {
		return err
	}
	return d.println(fmt.Sprintf("Topic %s was created.", topic))
}

func publishMessage(ctx context.Context, d *Dispatcher, args []string) error {
	if err := checkArgs(PublishMessage, args); err != nil {
		return err
	}

	topic := pub.TopicName(args[0], args[2])
	ids, err := d.producer.PublishBatch(ctx, topic, pub.TextEvent(args[3]))
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := d.println(fmt.Sprintf("Published a message with a message id: %s", id)); err != nil {
			return err
		}
	}
	return nil
}

func connectIRC(ctx context.Context, d *Dispatcher, args []string) error {
	if err := checkArgs(ConnectIRC, args); err != nil {
		return err
	}

	cfg := irc.Config{
		Topic:   pub.TopicName(args[0], args[2]),
		Server:  args[3],
		Channel: args[4],
		Nick:    irc.Nick(args[0]),
	}
	n, err := d.relay.Run(ctx, cfg)
	if err != nil {
		return err
	}
	d.logger.Info("irc relay finished", zap.Int("published", n))
	return nil
}

func listTopics(ctx context.Context, d *Dispatcher, args []string) error {
	if err := checkArgs(ListTopics, args); err != nil {
		return err
	}

	names, err := d.service.ListTopics(ctx, args[0])
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := d.println(name); err != nil {
			return err
		}
	}
	return nil
}

func deleteTopic(ctx context.Context, d *Dispatcher, args []string) error {
	if err := checkArgs(DeleteTopic, args); err != nil {
		return err
	}

	topic := pub.TopicName(args[0], args[2])
	if err := d.service.DeleteTopic(ctx, topic); err != nil {
		return err
	}
	return d.println(fmt.Sprintf("Topic %s was deleted.", topic))
}

func createSubscription(ctx context.Context, d *Dispatcher, args []string) error {
	if err := checkArgs(CreateSubscription, args); err != nil {
		return err
	}

	sub := pub.SubscriptionName(args[0], args[2])
	topic := pub.TopicName(args[0], args[3])
	if err := d.service.CreateSubscription(ctx, sub, topic); err != nil {
		return err
	}
	return d.println(fmt.Sprintf("Subscription %s was created.", sub))
}

func pullMessages(ctx context.Context, d *Dispatcher, args []string) error {
	if err := checkArgs(PullMessages, args); err != nil {
		return err
	}

	sub := pub.SubscriptionName(args[0], args[2])
	return consumer.Loop(ctx, d.consumer, sub, d.continueFunc())
}

func listSubscriptions(ctx context.Context, d *Dispatcher, args []string) error {
	if err := checkArgs(ListSubscriptions, args); err != nil {
		return err
	}

	names, err := d.service.ListSubscriptions(ctx, args[0])
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := d.println(name); err != nil {
			return err
		}
	}
	return nil
}

func deleteSubscription(ctx context.Context, d *Dispatcher, args []string) error {
	if err := checkArgs(DeleteSubscription, args); err != nil {
		return err
	}

	sub := pub.SubscriptionName(args[0], args[2])
	if err := d.service.DeleteSubscription(ctx, sub); err != nil {
		return err
	}
	return d.println(fmt.Sprintf("Subscription %s was deleted.", sub))
}
