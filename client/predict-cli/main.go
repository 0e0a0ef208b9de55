package main

import "prediction_relay/client/predict-cli/cmd"

func main() {
	cmd.Execute()
}
