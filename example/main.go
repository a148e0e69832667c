// Command example drives a tiny framecoro scheduler from a fake 60Hz
// frame loop, demonstrating Wait, Await, TakeResult and Release.
package main

import (
	"fmt"

	"github.com/nilsvik/framecoro"
)

const (
	updatePhase framecoro.Phase = iota
)

func main() {
	sched := framecoro.NewScheduler()

	frame := 0
	sched.SetClock(framecoro.DefaultClock, func() float64 {
		return float64(frame) / 60
	})

	handle := framecoro.Start(sched, func(co *framecoro.Coroutine[int]) (int, error) {
		fmt.Println("countdown: waiting half a second")
		framecoro.Wait(co, 0.5, updatePhase, framecoro.DefaultClock)

		total, err := framecoro.Await(co, func(child *framecoro.Coroutine[int]) (int, error) {
			sum := 0
			for i := 0; i < 3; i++ {
				framecoro.Yield(child)
				sum += i
			}
			return sum, nil
		})
		if err != nil {
			return 0, err
		}
		fmt.Println("child coroutine contributed", total)
		return total + 1, nil
	})

	for !handle.IsDown() {
		sched.Update(updatePhase, framecoro.DefaultClock)
		frame++
	}

	result, err, ok := handle.TakeResult()
	if ok {
		fmt.Printf("result=%d err=%v\n", result, err)
	}
	handle.Release()
}
