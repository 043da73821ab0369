package bdd

import "github.com/cucumber/godog"

// godog run ./tests/bdd/featureFiles/messaging_service.feature
// Use of godog CLI is deprecated, please use *testing.T instead.
// See https://github.com/cucumber/godog/discussions/478 for details.
// Feature: 對話功能
//   In order to negotiate collaborations
//   As brands and creators on the marketplace
//   I want to exchange messages in real time

//   Background:
//     Given "brandA" 已登入並取得 Token "tokenA"
//     And "creatorB" 已登入並取得 Token "tokenB"

//   Scenario: 首次聯繫建立對話
//     When "brandA" 對 "creatorB" 發起對話
//     Then 對話應該包含 "brandA" 和 "creatorB"

//   Scenario: 發送與接收訊息
//     Given 已存在對話 with "brandA" and "creatorB"
//     And "creatorB" 已選取該對話
//     When "brandA" 發送訊息 "Hi, interested in a collab?"
//     Then "creatorB" 應該收到訊息 "Hi, interested in a collab?"

//   Scenario: 進入對話即視為已讀
//     Given "brandA" 曾發送訊息 "ping" 給 "creatorB"
//     When "creatorB" 選取該對話
//     Then "creatorB" 的未讀標記應該消失
//     And "brandA" 應該看到回條 "seen"

func StepDefinitioninition1(arg1, arg2 string) error {
	return godog.ErrPending
}

func StepDefinitioninition2(arg1, arg2 string) error {
	return godog.ErrPending
}

func StepDefinitioninition3(arg1, arg2 string) error {
	return godog.ErrPending
}

func StepDefinitioninition4(arg1, arg2 string) error {
	return godog.ErrPending
}

func withAnd(arg1, arg2 string) error {
	return godog.ErrPending
}

func selected(arg1 string) error {
	return godog.ErrPending
}

func unreadCleared(arg1 string) error {
	return godog.ErrPending
}

func receipt(arg1, arg2 string) error {
	return godog.ErrPending
}

func token(arg1, arg2 string) error {
	return godog.ErrPending
}

func sentTo(arg1, arg2, arg3 string) error {
	return godog.ErrPending
}

func InitializeMessagingServiceScenario(ctx *godog.ScenarioContext) {
	ctx.Step(`^"([^"]*)" 對 "([^"]*)" 發起對話$`, StepDefinitioninition1)
	ctx.Step(`^對話應該包含 "([^"]*)" 和 "([^"]*)"$`, StepDefinitioninition2)
	ctx.Step(`^"([^"]*)" 發送訊息 "([^"]*)"$`, StepDefinitioninition3)
	ctx.Step(`^"([^"]*)" 應該收到訊息 "([^"]*)"$`, StepDefinitioninition4)
	ctx.Step(`^已存在對話 with "([^"]*)" and "([^"]*)"$`, withAnd)
	ctx.Step(`^"([^"]*)" 已選取該對話$`, selected)
	ctx.Step(`^"([^"]*)" 選取該對話$`, selected)
	ctx.Step(`^"([^"]*)" 的未讀標記應該消失$`, unreadCleared)
	ctx.Step(`^"([^"]*)" 應該看到回條 "([^"]*)"$`, receipt)
	ctx.Step(`^"([^"]*)" 曾發送訊息 "([^"]*)" 給 "([^"]*)"$`, sentTo)
	ctx.Step(`^"([^"]*)" 已登入並取得 Token "([^"]*)"$`, token)
}
