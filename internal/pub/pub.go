// Package pub holds the types shared by the pubcli components: the remote
// service boundary, the messages that cross it and the errors it produces.
package pub

import (
	"fmt"
	"strings"
)

// BatchSize is the upper bound of messages requested by a single pull.
const BatchSize = 10

func ProjectName(project string) string {
	if strings.HasPrefix(project, "projects/") {
		return project
	}
	return fmt.Sprintf("projects/%s", project)
}

// TopicName returns the fully qualified name of topic in project. Names that
// are already qualified are returned unchanged.
func TopicName(project, topic string) string {
	return resourceName(project, "topics", topic)
}

// SubscriptionName returns the fully qualified name of sub in project. Names
// that are already qualified are returned unchanged.
func SubscriptionName(project, sub string) string {
	return resourceName(project, "subscriptions", sub)
}

// ShortName strips the "projects/P/<kind>/" prefix from a resource name.
func ShortName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

func resourceName(project, kind, name string) string {
	if strings.HasPrefix(name, "projects/") {
		return name
	}
	return fmt.Sprintf("%s/%s/%s", ProjectName(project), kind, name)
}
