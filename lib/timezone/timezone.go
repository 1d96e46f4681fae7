package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Moscow")
	if err != nil {
		panic(err)
	}
}

// generated documents carry the institution's local date, so date
// arithmetic must not depend on wherever the server happens to run
func Now() time.Time {
	return time.Now().In(Location)
}
