package dispatcher

// Operation is one of the fixed set of commands the CLI runs.
type Operation int

const (
	CreateTopic Operation = iota + 1
	PublishMessage
	ConnectIRC
	ListTopics
	DeleteTopic
	CreateSubscription
	PullMessages
	ListSubscriptions
	DeleteSubscription
)

var operationNames = map[Operation]string{
	CreateTopic:        "create_topic",
	PublishMessage:     "publish_message",
	ConnectIRC:         "connect_irc",
	ListTopics:         "list_topics",
	DeleteTopic:        "delete_topic",
	CreateSubscription: "create_subscription",
	PullMessages:       "pull_messages",
	ListSubscriptions:  "list_subscriptions",
	DeleteSubscription: "delete_subscription",
}

var operationsByName = func() map[string]Operation {
	m := make(map[string]Operation, len(operationNames))
	for op, name := range operationNames {
		m[name] = op
	}
	return m
}()

func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return "unknown"
}

// ParseOperation matches name case-sensitively against the known operations.
func ParseOperation(name string) (Operation, bool) {
	op, ok := operationsByName[name]
	return op, ok
}

// Operations returns every operation in declaration order.
func Operations() []Operation {
	ops := make([]Operation, 0, len(operationNames))
	for op := CreateTopic; op <= DeleteSubscription; op++ {
		ops = append(ops, op)
	}
	return ops
}

// Usage lists the positional arguments of every operation.
const Usage = `Available arguments are:
PROJ list_topics
PROJ create_topic TOPIC
PROJ delete_topic TOPIC
PROJ list_subscriptions
PROJ create_subscription SUBSCRIPTION LINKED_TOPIC
PROJ delete_subscription SUBSCRIPTION
PROJ connect_irc TOPIC SERVER CHANNEL
PROJ publish_message TOPIC MESSAGE
PROJ pull_messages SUBSCRIPTION
`
